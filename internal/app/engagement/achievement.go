package engagement

import (
	"fmt"
	"time"

	"github.com/vitalquest/vitalquest/internal/domain"
)

// ─── Achievement Engine ─────────────────────────────────────────────────────
// A flat catalog swept by CheckAchievements. Progress is a watermark: it is
// set to the latest observed statistic, never incremented, and never moves
// backwards. Unlock happens exactly once, when progress reaches target.

// UpdateAchievementProgress sets an achievement's progress and unlocks it
// when the target is reached. Unknown ids, unlocked achievements and values
// below the current watermark are a no-op.
func (r Rulebook) UpdateAchievementProgress(s domain.GameState, id string, progress float64, now time.Time) domain.GameState {
	if s.User == nil {
		return s
	}
	i := s.AchievementIndex(id)
	if i < 0 || s.Achievements[i].Unlocked || progress < s.Achievements[i].Progress {
		return s
	}
	next := s.Clone()
	r.setAchievementProgress(&next, i, progress, now)
	return next
}

// UnlockAchievement unlocks an achievement regardless of its progress.
func (r Rulebook) UnlockAchievement(s domain.GameState, id string, now time.Time) domain.GameState {
	if s.User == nil {
		return s
	}
	i := s.AchievementIndex(id)
	if i < 0 || s.Achievements[i].Unlocked {
		return s
	}
	next := s.Clone()
	r.unlock(&next, i, now)
	return next
}

// CheckAchievements feeds every locked achievement the current value of its
// statistic. An achievement with a gate is only fed once the statistic has
// reached the gate.
func (r Rulebook) CheckAchievements(s domain.GameState, now time.Time) domain.GameState {
	if s.User == nil {
		return s
	}
	next := s.Clone()
	changed := false
	for i := range next.Achievements {
		a := next.Achievements[i]
		if a.Unlocked || a.Stat == "" {
			continue
		}
		// Read stats from next: an earlier unlock in this sweep may have
		// raised the level.
		v := r.achievementStat(next, a.Stat, now)
		if v < a.Gate || v <= a.Progress {
			continue
		}
		r.setAchievementProgress(&next, i, v, now)
		changed = true
	}
	if !changed {
		return s
	}
	return next
}

func (r Rulebook) setAchievementProgress(s *domain.GameState, i int, progress float64, now time.Time) {
	a := &s.Achievements[i]
	a.Progress = progress
	if a.Progress >= a.Target {
		r.unlock(s, i, now)
	}
}

// unlock marks the achievement and pays it out through the same path as
// quests, so an unlock can cascade into a level-up.
func (r Rulebook) unlock(s *domain.GameState, i int, now time.Time) {
	a := &s.Achievements[i]
	a.Unlocked = true
	a.UnlockedAt = now
	if a.Progress < a.Target {
		a.Progress = a.Target
	}
	title, xp, gold := a.Title, a.XPReward, a.GoldReward

	if xp > 0 {
		r.grantXP(s, xp, now)
	}
	if gold > 0 {
		r.grantGold(s, gold, now)
	}
	s.User.Stats.TotalAchievementsUnlocked++
	r.notify(s, domain.NotifyAchievement, "Achievement Unlocked!",
		fmt.Sprintf("You unlocked \"%s\"!", title), "🏆", now)
}

// achievementStat reads one tracked statistic.
func (r Rulebook) achievementStat(s domain.GameState, stat domain.AchievementStat, now time.Time) float64 {
	today, _ := r.DailySummary(s, now)
	u := s.User
	switch stat {
	case domain.StatTodaySteps:
		return today.Steps
	case domain.StatTodayExerciseMinutes:
		return today.ExerciseMinutes
	case domain.StatTodayMeditationMinutes:
		return today.MeditationMinutes
	case domain.StatTodayWaterGlasses:
		return today.WaterGlasses
	case domain.StatMealsLogged:
		return float64(today.MealsLogged)
	case domain.StatTotalSteps:
		return u.Stats.TotalSteps
	case domain.StatTotalMeditationMinutes:
		return u.Stats.TotalMeditationMinutes
	case domain.StatGoodSleepToday:
		if r.goodSleep(today) {
			return 1
		}
		return 0
	case domain.StatGoodSleepNights:
		return float64(r.goodSleepNights(s, now))
	case domain.StatCurrentStreak:
		return float64(u.Stats.CurrentStreak)
	case domain.StatQuestsCompleted:
		return float64(u.Stats.TotalQuestsCompleted)
	case domain.StatLevel:
		return float64(u.Character.Level)
	}
	return 0
}

func (r Rulebook) goodSleep(d domain.DailySummary) bool {
	x := r.rules.XP
	return d.SleepHours >= x.PerfectSleepMin && d.SleepHours <= x.PerfectSleepMax
}

// goodSleepNights counts consecutive days of good sleep ending today, or
// ending yesterday when today has no sleep logged yet.
func (r Rulebook) goodSleepNights(s domain.GameState, now time.Time) int {
	day := r.StartOfDay(now)
	if today, _ := r.DailySummary(s, day); today.SleepHours == 0 {
		day = day.AddDate(0, 0, -1)
	}
	n := 0
	for {
		sum, ok := r.DailySummary(s, day)
		if !ok || !r.goodSleep(sum) {
			return n
		}
		n++
		day = day.AddDate(0, 0, -1)
	}
}

// ─── Achievement Catalog ────────────────────────────────────────────────────

// rarityGold scales the base unlock gold by tier.
var rarityGold = map[domain.AchievementRarity]int64{
	domain.RarityCommon:    1,
	domain.RarityUncommon:  2,
	domain.RarityRare:      3,
	domain.RarityEpic:      5,
	domain.RarityLegendary: 10,
}

// Catalog returns the full achievement catalog, every entry locked.
func (r Rulebook) Catalog() []domain.Achievement {
	defs := []domain.Achievement{
		// ── Fitness ────────────────────────────────────────────────────
		{ID: "ach_first_steps", Title: "First Steps", Description: "Walk 1,000 steps in a day",
			Icon: "👣", Rarity: domain.RarityCommon, Category: domain.CategoryFitness,
			Stat: domain.StatTodaySteps, Gate: 1000, Target: 1000, XPReward: 50},
		{ID: "ach_walker", Title: "Walker", Description: "Walk 10,000 steps in a day",
			Icon: "🚶", Rarity: domain.RarityUncommon, Category: domain.CategoryFitness,
			Stat: domain.StatTodaySteps, Gate: 10000, Target: 10000, XPReward: 150},
		{ID: "ach_marathon", Title: "Marathoner", Description: "Walk 100,000 steps in total",
			Icon: "🏅", Rarity: domain.RarityRare, Category: domain.CategoryFitness,
			Stat: domain.StatTotalSteps, Target: 100000, XPReward: 500},
		{ID: "ach_workout_warrior", Title: "Workout Warrior", Description: "Exercise for 30 minutes in a day",
			Icon: "🏋️", Rarity: domain.RarityCommon, Category: domain.CategoryFitness,
			Stat: domain.StatTodayExerciseMinutes, Gate: 30, Target: 30, XPReward: 100},

		// ── Mindfulness ────────────────────────────────────────────────
		{ID: "ach_zen_beginner", Title: "Zen Beginner", Description: "Meditate for 5 minutes in a day",
			Icon: "🧘", Rarity: domain.RarityCommon, Category: domain.CategoryMindfulness,
			Stat: domain.StatTodayMeditationMinutes, Gate: 5, Target: 5, XPReward: 50},
		{ID: "ach_mindful_master", Title: "Mindful Master", Description: "Meditate for 1,000 minutes in total",
			Icon: "🪷", Rarity: domain.RarityEpic, Category: domain.CategoryMindfulness,
			Stat: domain.StatTotalMeditationMinutes, Target: 1000, XPReward: 750},

		// ── Hydration / Nutrition ──────────────────────────────────────
		{ID: "ach_hydration_hero", Title: "Hydration Hero", Description: "Drink 8 glasses of water in a day",
			Icon: "💧", Rarity: domain.RarityCommon, Category: domain.CategoryHydration,
			Stat: domain.StatTodayWaterGlasses, Gate: 8, Target: 8, XPReward: 75},
		{ID: "ach_balanced_diet", Title: "Balanced Diet", Description: "Log 3 meals in a day",
			Icon: "🥗", Rarity: domain.RarityCommon, Category: domain.CategoryNutrition,
			Stat: domain.StatMealsLogged, Gate: 3, Target: 3, XPReward: 50},

		// ── Sleep ──────────────────────────────────────────────────────
		{ID: "ach_good_sleep", Title: "Well Rested", Description: "Sleep between 7 and 9 hours",
			Icon: "😴", Rarity: domain.RarityCommon, Category: domain.CategorySleep,
			Stat: domain.StatGoodSleepToday, Gate: 1, Target: 1, XPReward: 50},
		{ID: "ach_sleep_champion", Title: "Sleep Champion", Description: "Sleep well 7 nights in a row",
			Icon: "🌙", Rarity: domain.RarityRare, Category: domain.CategorySleep,
			Stat: domain.StatGoodSleepNights, Target: 7, XPReward: 300},

		// ── Streaks ────────────────────────────────────────────────────
		{ID: "ach_streak_3", Title: "On a Roll", Description: "Keep a 3-day streak",
			Icon: "🔥", Rarity: domain.RarityCommon, Category: domain.CategoryCustom,
			Stat: domain.StatCurrentStreak, Gate: 3, Target: 3, XPReward: 75},
		{ID: "ach_streak_7", Title: "Week Warrior", Description: "Keep a 7-day streak",
			Icon: "🔥", Rarity: domain.RarityUncommon, Category: domain.CategoryCustom,
			Stat: domain.StatCurrentStreak, Gate: 7, Target: 7, XPReward: 200},
		{ID: "ach_streak_30", Title: "Monthly Machine", Description: "Keep a 30-day streak",
			Icon: "💪", Rarity: domain.RarityEpic, Category: domain.CategoryCustom,
			Stat: domain.StatCurrentStreak, Gate: 30, Target: 30, XPReward: 1000},
		{ID: "ach_streak_100", Title: "Centurion", Description: "Keep a 100-day streak",
			Icon: "🏛️", Rarity: domain.RarityLegendary, Category: domain.CategoryCustom,
			Stat: domain.StatCurrentStreak, Gate: 100, Target: 100, XPReward: 5000, Hidden: true},

		// ── Quests ─────────────────────────────────────────────────────
		{ID: "ach_first_quest", Title: "Adventurer", Description: "Complete your first quest",
			Icon: "🗺️", Rarity: domain.RarityCommon, Category: domain.CategoryCustom,
			Stat: domain.StatQuestsCompleted, Gate: 1, Target: 1, XPReward: 50},
		{ID: "ach_quest_master", Title: "Quest Master", Description: "Complete 50 quests",
			Icon: "⚔️", Rarity: domain.RarityRare, Category: domain.CategoryCustom,
			Stat: domain.StatQuestsCompleted, Gate: 50, Target: 50, XPReward: 500},
		{ID: "ach_quest_legend", Title: "Quest Legend", Description: "Complete 200 quests",
			Icon: "👑", Rarity: domain.RarityLegendary, Category: domain.CategoryCustom,
			Stat: domain.StatQuestsCompleted, Gate: 200, Target: 200, XPReward: 2000, Hidden: true},

		// ── Levels ─────────────────────────────────────────────────────
		{ID: "ach_level_5", Title: "Rising Star", Description: "Reach level 5",
			Icon: "⭐", Rarity: domain.RarityCommon, Category: domain.CategoryCustom,
			Stat: domain.StatLevel, Gate: 5, Target: 5, XPReward: 100},
		{ID: "ach_level_10", Title: "Seasoned", Description: "Reach level 10",
			Icon: "🌟", Rarity: domain.RarityUncommon, Category: domain.CategoryCustom,
			Stat: domain.StatLevel, Gate: 10, Target: 10, XPReward: 250},
		{ID: "ach_level_20", Title: "Veteran", Description: "Reach level 20",
			Icon: "🎖️", Rarity: domain.RarityEpic, Category: domain.CategoryCustom,
			Stat: domain.StatLevel, Gate: 20, Target: 20, XPReward: 750},
		{ID: "ach_level_30", Title: "Legend", Description: "Reach the maximum level",
			Icon: "🏆", Rarity: domain.RarityLegendary, Category: domain.CategoryCustom,
			Stat: domain.StatLevel, Gate: 30, Target: 30, XPReward: 0, Hidden: true},
	}
	base := r.rules.Gold.AchievementUnlock
	for i := range defs {
		defs[i].GoldReward = base * rarityGold[defs[i].Rarity]
	}
	return defs
}
