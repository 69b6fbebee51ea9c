package engagement

import (
	"fmt"
	"time"

	"github.com/vitalquest/vitalquest/internal/domain"
)

// ─── Streak Tracker ─────────────────────────────────────────────────────────
// A streak is keyed by (type, reference id). It advances at most once per
// local day and resets to 0 on a break; LongestStreak never shrinks. The
// overall streak is mirrored into UserStats.

// UpdateStreak advances a streak, creating it at 1 if it does not exist.
// A second call on the same day is a no-op.
func (r Rulebook) UpdateStreak(s domain.GameState, t domain.StreakType, referenceID string, now time.Time) domain.GameState {
	if s.User == nil {
		return s
	}
	if i := s.StreakIndex(t, referenceID); i >= 0 && r.SameDay(s.Streaks[i].LastCompletedDate, now) {
		return s
	}
	next := s.Clone()
	r.bumpStreak(&next, t, referenceID, now)
	return next
}

// BreakStreak resets a streak to 0, keeping its longest run.
func (r Rulebook) BreakStreak(s domain.GameState, t domain.StreakType, referenceID string) domain.GameState {
	if s.User == nil {
		return s
	}
	i := s.StreakIndex(t, referenceID)
	if i < 0 {
		return s
	}
	next := s.Clone()
	r.breakStreak(&next, i)
	return next
}

// BuyStreakFreeze spends gold on one freeze for an existing streak. Not
// enough gold is a no-op.
func (r Rulebook) BuyStreakFreeze(s domain.GameState, t domain.StreakType, referenceID string) domain.GameState {
	if s.User == nil {
		return s
	}
	i := s.StreakIndex(t, referenceID)
	cost := r.rules.Streaks.FreezeCost
	if i < 0 || s.User.Character.Gold < cost {
		return s
	}
	next := s.Clone()
	next.User.Character.Gold -= cost
	next.Streaks[i].FreezesAvailable++
	return next
}

// MissDay records that missed passed without a qualifying completion. A
// freeze covers the day if one is available; otherwise the streak breaks.
func (r Rulebook) MissDay(s domain.GameState, t domain.StreakType, referenceID string, missed time.Time) domain.GameState {
	if s.User == nil {
		return s
	}
	i := s.StreakIndex(t, referenceID)
	if i < 0 || s.Streaks[i].CurrentStreak == 0 {
		return s
	}
	next := s.Clone()
	r.missDay(&next, i, missed)
	return next
}

// ExpireStreaks walks every live streak forward to yesterday. Each whole
// day without a completion consumes a freeze or breaks the streak. This is
// the day-boundary policy run by the maintenance sweeper.
func (r Rulebook) ExpireStreaks(s domain.GameState, now time.Time) domain.GameState {
	if s.User == nil {
		return s
	}
	yesterday := r.StartOfDay(now).AddDate(0, 0, -1)
	var next *domain.GameState
	for i, st := range s.Streaks {
		if st.CurrentStreak == 0 || !r.StartOfDay(st.LastCompletedDate).Before(yesterday) {
			continue
		}
		if next == nil {
			c := s.Clone()
			next = &c
		}
		for next.Streaks[i].CurrentStreak > 0 {
			last := r.StartOfDay(next.Streaks[i].LastCompletedDate)
			if !last.Before(yesterday) {
				break
			}
			r.missDay(next, i, last.AddDate(0, 0, 1))
		}
	}
	if next == nil {
		return s
	}
	return *next
}

// StreakFor returns the streak with the compound key.
func (r Rulebook) StreakFor(s domain.GameState, t domain.StreakType, referenceID string) (domain.Streak, bool) {
	i := s.StreakIndex(t, referenceID)
	if i < 0 {
		return domain.Streak{}, false
	}
	return s.Streaks[i], true
}

// bumpStreak advances a streak inside a transition and returns its current
// length. Same-day calls leave it untouched.
func (r Rulebook) bumpStreak(s *domain.GameState, t domain.StreakType, referenceID string, now time.Time) int {
	i := s.StreakIndex(t, referenceID)
	if i >= 0 && r.SameDay(s.Streaks[i].LastCompletedDate, now) {
		return s.Streaks[i].CurrentStreak
	}
	if i < 0 {
		s.Streaks = append(s.Streaks, domain.Streak{Type: t, ReferenceID: referenceID})
		i = len(s.Streaks) - 1
	}
	st := &s.Streaks[i]
	st.CurrentStreak++
	st.LongestStreak = max(st.LongestStreak, st.CurrentStreak)
	st.LastCompletedDate = now
	current := st.CurrentStreak

	if t == domain.StreakOverall {
		r.mirrorOverall(s, *st)
		r.editSummary(s, now, func(d *domain.DailySummary) { d.StreakMaintained = true })
	}
	if r.rules.Streaks.IsMilestone(current) {
		bonus := r.rules.Gold.StreakMilestone
		r.grantGold(s, bonus, now)
		r.notify(s, domain.NotifyStreakAlert, "Streak Milestone!",
			fmt.Sprintf("%d-day %s streak! You earned %d gold.", current, streakLabel(t, referenceID), bonus), "🔥", now)
	}
	return current
}

func (r Rulebook) breakStreak(s *domain.GameState, i int) {
	st := &s.Streaks[i]
	st.CurrentStreak = 0
	if st.Type == domain.StreakOverall {
		r.mirrorOverall(s, *st)
	}
}

func (r Rulebook) missDay(s *domain.GameState, i int, missed time.Time) {
	st := &s.Streaks[i]
	if st.FreezesAvailable > 0 {
		st.FreezesAvailable--
		if missed.After(st.LastCompletedDate) {
			st.LastCompletedDate = missed
		}
		return
	}
	r.breakStreak(s, i)
}

func (r Rulebook) mirrorOverall(s *domain.GameState, st domain.Streak) {
	stats := &s.User.Stats
	stats.CurrentStreak = st.CurrentStreak
	stats.LongestStreak = max(stats.LongestStreak, st.LongestStreak)
}

func streakLabel(t domain.StreakType, referenceID string) string {
	if referenceID == "" {
		return string(t)
	}
	return referenceID
}
