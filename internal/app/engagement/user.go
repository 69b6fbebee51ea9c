package engagement

import (
	"strings"
	"time"

	"github.com/vitalquest/vitalquest/internal/domain"
)

// NewGameState returns an empty state with no user.
func NewGameState() domain.GameState {
	return domain.GameState{DailySummaries: make(map[string]domain.DailySummary)}
}

// InitializeUser creates the player at level 1 with full base HP, installs
// the achievement catalog and the first daily and weekly quests. An
// existing user is left alone.
func (r Rulebook) InitializeUser(s domain.GameState, username string, now time.Time) domain.GameState {
	if s.User != nil {
		return s
	}
	username = strings.TrimSpace(username)
	if username == "" {
		username = "Adventurer"
	}
	next := s.Clone()
	next.User = &domain.User{
		ID:        r.newID(),
		Username:  username,
		CreatedAt: now,
		Character: domain.Character{
			Name:  username,
			Class: domain.ClassVillager,
			Level: 1,
			HP:    r.rules.HP.BaseMaxHP,
			MaxHP: r.rules.HP.BaseMaxHP,
		},
		Stats: domain.UserStats{
			JoinedDate:     now,
			LastActiveDate: now,
		},
	}
	if len(next.Achievements) == 0 {
		next.Achievements = r.Catalog()
	}
	next = r.EnsureDailyQuests(next, now)
	next = r.EnsureWeeklyQuests(next, now)
	return next
}

// ResetProgress wipes all progress and starts the same player over. This
// is the only path on which achievement progress goes back to zero.
func (r Rulebook) ResetProgress(s domain.GameState, now time.Time) domain.GameState {
	if s.User == nil {
		return s
	}
	fresh := r.InitializeUser(NewGameState(), s.User.Username, now)
	fresh.User.ID = s.User.ID
	return fresh
}

// RecordActivity is the full logging flow: append the record, advance quest
// progress (completing quests that reach their target), then sweep
// achievements. One transition, so no caller sees a half-applied log, and
// at most one level-up notification however many grants crossed a level.
func (r Rulebook) RecordActivity(s domain.GameState, rec domain.ActivityRecord, now time.Time) domain.GameState {
	next := r.AddActivity(s, rec, now)
	if next.User == nil || len(next.Activities) == len(s.Activities) {
		return s
	}
	next = r.UpdateQuestProgress(next, now)
	return collapseLevelUps(s, r.CheckAchievements(next, now))
}

// SyncActivities is the bulk-import flow, evaluated once at the end.
func (r Rulebook) SyncActivities(s domain.GameState, recs []domain.ActivityRecord, now time.Time) domain.GameState {
	next := r.ImportActivities(s, recs, now)
	if next.User == nil || len(next.Activities) == len(s.Activities) {
		return s
	}
	next = r.UpdateQuestProgress(next, now)
	return collapseLevelUps(s, r.CheckAchievements(next, now))
}

// FinishQuest completes a quest and sweeps achievements in one transition.
func (r Rulebook) FinishQuest(s domain.GameState, id string, now time.Time) domain.GameState {
	next := r.CompleteQuest(s, id, now)
	if next.User == nil || len(next.CompletedQuests) == len(s.CompletedQuests) {
		return s
	}
	return collapseLevelUps(s, r.CheckAchievements(next, now))
}
