package engagement

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/vitalquest/vitalquest/internal/domain"
)

// ─── Quest Catalog ──────────────────────────────────────────────────────────
// Fixed daily and weekly catalogs. Daily quests are due at the next local
// midnight, weekly quests seven days after the start of the generation day.
// Ids carry the generation timestamp so batches never collide.

type questTemplate struct {
	kind        string
	title       string
	description string
	category    domain.QuestCategory
	metric      domain.ProgressMetric
	difficulty  domain.QuestDifficulty
	target      float64
	xp, gold    int64
	icon        string
}

var dailyQuestPool = []questTemplate{
	{kind: "steps", title: "Daily Steps Goal", description: "Walk 10,000 steps today",
		category: domain.CategoryFitness, metric: domain.MetricSteps, difficulty: domain.DifficultyMedium,
		target: 10000, xp: 100, gold: 50, icon: "👟"},
	{kind: "exercise", title: "Exercise Session", description: "Complete 30 minutes of exercise",
		category: domain.CategoryFitness, metric: domain.MetricExerciseMinutes, difficulty: domain.DifficultyMedium,
		target: 30, xp: 120, gold: 60, icon: "💪"},
	{kind: "water", title: "Stay Hydrated", description: "Drink 8 glasses of water",
		category: domain.CategoryHydration, metric: domain.MetricWaterGlasses, difficulty: domain.DifficultyEasy,
		target: 8, xp: 60, gold: 30, icon: "💧"},
	{kind: "meditation", title: "Mindful Moment", description: "Meditate for 10 minutes",
		category: domain.CategoryMindfulness, metric: domain.MetricMeditationMinutes, difficulty: domain.DifficultyEasy,
		target: 10, xp: 80, gold: 40, icon: "🧘"},
	{kind: "meals", title: "Nutrition Tracking", description: "Log 3 meals today",
		category: domain.CategoryNutrition, metric: domain.MetricMealsLogged, difficulty: domain.DifficultyEasy,
		target: 3, xp: 50, gold: 25, icon: "🥗"},
}

var weeklyQuestPool = []questTemplate{
	{kind: "steps", title: "Weekly Step Challenge", description: "Walk 50,000 steps this week",
		category: domain.CategoryFitness, metric: domain.MetricSteps, difficulty: domain.DifficultyHard,
		target: 50000, xp: 500, gold: 250, icon: "🏃"},
	{kind: "exercise", title: "Weekly Workout Goal", description: "Exercise for 150 minutes this week",
		category: domain.CategoryFitness, metric: domain.MetricExerciseMinutes, difficulty: domain.DifficultyHard,
		target: 150, xp: 600, gold: 300, icon: "🏋️"},
	{kind: "meditation", title: "Weekly Mindfulness", description: "Meditate for 70 minutes this week",
		category: domain.CategoryMindfulness, metric: domain.MetricMeditationMinutes, difficulty: domain.DifficultyMedium,
		target: 70, xp: 400, gold: 200, icon: "🕉️"},
}

// GenerateDailyQuests builds a fresh daily batch.
func (r Rulebook) GenerateDailyQuests(now time.Time) []domain.Quest {
	due := r.StartOfDay(now).AddDate(0, 0, 1)
	return buildQuests(dailyQuestPool, domain.QuestDaily, now, due)
}

// GenerateWeeklyQuests builds a fresh weekly batch.
func (r Rulebook) GenerateWeeklyQuests(now time.Time) []domain.Quest {
	due := r.StartOfDay(now).AddDate(0, 0, 7)
	return buildQuests(weeklyQuestPool, domain.QuestWeekly, now, due)
}

func buildQuests(pool []questTemplate, t domain.QuestType, now, due time.Time) []domain.Quest {
	quests := make([]domain.Quest, 0, len(pool))
	for _, tmpl := range pool {
		quests = append(quests, domain.Quest{
			ID:          fmt.Sprintf("%s_%s_%d", t, tmpl.kind, now.UnixMilli()),
			Title:       tmpl.title,
			Description: tmpl.description,
			Type:        t,
			Category:    tmpl.category,
			Metric:      tmpl.metric,
			Difficulty:  tmpl.difficulty,
			XPReward:    tmpl.xp,
			GoldReward:  tmpl.gold,
			Target:      tmpl.target,
			CreatedAt:   now,
			DueDate:     due,
			Icon:        tmpl.icon,
		})
	}
	return quests
}

// CustomQuestSpec is what a player fills in to create their own quest.
type CustomQuestSpec struct {
	Title       string
	Description string
	Category    domain.QuestCategory
	Difficulty  domain.QuestDifficulty
	Metric      domain.ProgressMetric // empty: completed by hand only
	Target      float64
	DueDate     time.Time // zero: no deadline
}

// NewCustomQuest builds a custom quest. Rewards are the custom-quest XP and
// daily-quest gold scaled by the difficulty multiplier, floored.
func (r Rulebook) NewCustomQuest(spec CustomQuestSpec, now time.Time) (domain.Quest, error) {
	if strings.TrimSpace(spec.Title) == "" {
		return domain.Quest{}, fmt.Errorf("%w: title is required", domain.ErrInvalidQuest)
	}
	if spec.Target <= 0 {
		return domain.Quest{}, fmt.Errorf("%w: target must be positive, got %v", domain.ErrInvalidQuest, spec.Target)
	}
	if spec.Category == "" {
		spec.Category = domain.CategoryCustom
	}
	if spec.Difficulty == "" {
		spec.Difficulty = domain.DifficultyEasy
	}
	mult := r.rules.Difficulty.Multiplier(spec.Difficulty)
	return domain.Quest{
		ID:          "custom_" + r.newID(),
		Title:       spec.Title,
		Description: spec.Description,
		Type:        domain.QuestCustom,
		Category:    spec.Category,
		Metric:      spec.Metric,
		Difficulty:  spec.Difficulty,
		XPReward:    int64(math.Floor(float64(r.rules.XP.CustomQuestComplete) * mult)),
		GoldReward:  int64(math.Floor(float64(r.rules.Gold.QuestDaily) * mult)),
		Target:      spec.Target,
		CreatedAt:   now,
		DueDate:     spec.DueDate,
		Icon:        "⭐",
	}, nil
}

// ─── Quest Transitions ──────────────────────────────────────────────────────

// AddQuests appends quests to the active list. Quests whose id already
// exists in either list are skipped.
func (r Rulebook) AddQuests(s domain.GameState, quests []domain.Quest) domain.GameState {
	if s.User == nil || len(quests) == 0 {
		return s
	}
	next := s.Clone()
	added := false
	for _, q := range quests {
		if next.ActiveQuestIndex(q.ID) >= 0 || next.CompletedQuestIndex(q.ID) >= 0 {
			continue
		}
		q.Completed = false
		next.ActiveQuests = append(next.ActiveQuests, q)
		added = true
	}
	if !added {
		return s
	}
	return next
}

// UpdateQuestProgress recomputes progress of every active quest from the
// ledger and completes the ones that reached their target. Daily and custom
// quests read today's summary; weekly quests read the sum of every day since
// they were created.
func (r Rulebook) UpdateQuestProgress(s domain.GameState, now time.Time) domain.GameState {
	if s.User == nil {
		return s
	}
	next := s.Clone()
	changed := false
	var reached []string
	for i := range next.ActiveQuests {
		q := &next.ActiveQuests[i]
		if q.Completed {
			continue
		}
		m := QuestMetric(*q)
		if m == "" {
			continue
		}
		p := r.questProgress(next, *q, m, now)
		if p != q.Progress {
			q.Progress = p
			changed = true
		}
		if q.Progress >= q.Target {
			reached = append(reached, q.ID)
		}
	}
	for _, id := range reached {
		r.completeQuest(&next, id, now)
	}
	if !changed && len(reached) == 0 {
		return s
	}
	return next
}

// CompleteQuest pays out and archives an active quest in one step: XP with
// any level-up, gold, a small heal, the move to the completed list with
// progress forced to target, the lifetime counter, and the notifications.
// Unknown or already completed ids are a no-op, so a retry never pays twice.
func (r Rulebook) CompleteQuest(s domain.GameState, id string, now time.Time) domain.GameState {
	if s.User == nil || s.ActiveQuestIndex(id) < 0 {
		return s
	}
	next := s.Clone()
	if !r.completeQuest(&next, id, now) {
		return s
	}
	return next
}

// DeleteQuest removes an active quest without reward.
func (r Rulebook) DeleteQuest(s domain.GameState, id string) domain.GameState {
	if s.User == nil {
		return s
	}
	i := s.ActiveQuestIndex(id)
	if i < 0 {
		return s
	}
	next := s.Clone()
	next.ActiveQuests = slices.Delete(next.ActiveQuests, i, i+1)
	return next
}

// CheckMissedQuests expires every overdue, uncompleted daily quest: HP
// penalty, deletion and a reminder notification.
func (r Rulebook) CheckMissedQuests(s domain.GameState, now time.Time) domain.GameState {
	if s.User == nil {
		return s
	}
	var missed []domain.Quest
	for _, q := range s.ActiveQuests {
		if q.Type == domain.QuestDaily && !q.Completed && q.IsOverdue(now) {
			missed = append(missed, q)
		}
	}
	if len(missed) == 0 {
		return s
	}

	next := s.Clone()
	penalty := r.rules.HP.DamagePerMissedDaily
	for _, q := range missed {
		damage(&next.User.Character, penalty)
		next.ActiveQuests = slices.DeleteFunc(next.ActiveQuests, func(a domain.Quest) bool { return a.ID == q.ID })
		r.notify(&next, domain.NotifyReminder, "Quest Expired",
			fmt.Sprintf("You missed \"%s\" and lost %d HP!", q.Title, penalty), "⏰", now)
	}
	return next
}

// EnsureDailyQuests generates a daily batch when no active daily quest is
// still due after now.
func (r Rulebook) EnsureDailyQuests(s domain.GameState, now time.Time) domain.GameState {
	if s.User == nil || hasCurrentQuest(s, domain.QuestDaily, now) {
		return s
	}
	return r.AddQuests(s, r.GenerateDailyQuests(now))
}

// EnsureWeeklyQuests drops overdue weekly quests without penalty and
// generates a weekly batch when none is current.
func (r Rulebook) EnsureWeeklyQuests(s domain.GameState, now time.Time) domain.GameState {
	if s.User == nil || hasCurrentQuest(s, domain.QuestWeekly, now) {
		return s
	}
	next := s.Clone()
	next.ActiveQuests = slices.DeleteFunc(next.ActiveQuests, func(q domain.Quest) bool {
		return q.Type == domain.QuestWeekly && q.IsOverdue(now)
	})
	return r.AddQuests(next, r.GenerateWeeklyQuests(now))
}

func hasCurrentQuest(s domain.GameState, t domain.QuestType, now time.Time) bool {
	for _, q := range s.ActiveQuests {
		if q.Type == t && !q.IsOverdue(now) {
			return true
		}
	}
	return false
}

// completeQuest applies every completion effect to s. Reports false when
// there was nothing to complete.
func (r Rulebook) completeQuest(s *domain.GameState, id string, now time.Time) bool {
	i := s.ActiveQuestIndex(id)
	if i < 0 || s.ActiveQuests[i].Completed {
		return false
	}
	q := s.ActiveQuests[i]

	if q.XPReward > 0 {
		r.grantXP(s, q.XPReward, now)
	}
	if q.GoldReward > 0 {
		r.grantGold(s, q.GoldReward, now)
	}
	heal(&s.User.Character, r.rules.HP.HealPerQuestComplete)

	q.Completed = true
	q.CompletedAt = now
	q.Progress = q.Target
	if q.Type == domain.QuestDaily {
		q.Streak = r.bumpStreak(s, domain.StreakQuest, questStreakRef(q), now)
	}
	s.ActiveQuests = slices.Delete(s.ActiveQuests, i, i+1)
	s.CompletedQuests = append(s.CompletedQuests, q)

	stats := &s.User.Stats
	stats.TotalQuestsCompleted++
	if now.After(stats.LastActiveDate) {
		stats.LastActiveDate = now
	}
	r.editSummary(s, now, func(d *domain.DailySummary) { d.QuestsCompleted++ })
	r.notify(s, domain.NotifyQuestComplete, "Quest Complete!",
		fmt.Sprintf("You completed \"%s\" and earned %d XP!", q.Title, q.XPReward), "✅", now)

	// The first completion of a day keeps the overall streak alive.
	r.bumpStreak(s, domain.StreakOverall, "", now)
	return true
}

// questProgress reads the value a quest tracks from the daily summaries.
func (r Rulebook) questProgress(s domain.GameState, q domain.Quest, m domain.ProgressMetric, now time.Time) float64 {
	if q.Type != domain.QuestWeekly {
		sum, _ := r.DailySummary(s, now)
		return sum.Metric(m)
	}
	var total float64
	end := r.StartOfDay(now)
	for day := r.StartOfDay(q.CreatedAt); !day.After(end); day = day.AddDate(0, 0, 1) {
		sum, _ := r.DailySummary(s, day)
		total += sum.Metric(m)
	}
	return total
}

// QuestMetric returns the summary field a quest tracks. Quests without an
// explicit metric fall back to their category, and fitness quests to their
// title, since the category alone cannot tell steps from exercise.
func QuestMetric(q domain.Quest) domain.ProgressMetric {
	if q.Metric != "" {
		return q.Metric
	}
	title := strings.ToLower(q.Title)
	switch q.Category {
	case domain.CategoryFitness:
		switch {
		case strings.Contains(title, "step"):
			return domain.MetricSteps
		case strings.Contains(title, "exercise"), strings.Contains(title, "workout"):
			return domain.MetricExerciseMinutes
		}
	case domain.CategoryNutrition:
		return domain.MetricMealsLogged
	case domain.CategoryHydration:
		return domain.MetricWaterGlasses
	case domain.CategoryMindfulness:
		return domain.MetricMeditationMinutes
	case domain.CategorySleep:
		return domain.MetricSleepHours
	}
	return ""
}

// questStreakRef keys the per-quest streak of a daily quest by what it
// tracks, so each day's regenerated quest continues the same streak.
func questStreakRef(q domain.Quest) string {
	return string(q.Type) + ":" + string(QuestMetric(q))
}
