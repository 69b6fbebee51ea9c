package domain

import (
	"errors"
	"fmt"
)

// ─── Balance Table ──────────────────────────────────────────────────────────
// GameRules holds every tunable number the rules engine uses. It is loaded
// from the [rules] section of config.toml and defaults to DefaultGameRules.

// GameRules is the full balance table.
type GameRules struct {
	XP         XPRules         `toml:"xp"`
	Gold       GoldRules       `toml:"gold"`
	Levels     LevelRules      `toml:"levels"`
	HP         HPRules         `toml:"hp"`
	Streaks    StreakRules     `toml:"streaks"`
	Difficulty DifficultyRules `toml:"difficulty"`
	Classes    ClassRules      `toml:"classes"`
}

// XPRules are the base rates and bonuses of the reward calculator.
type XPRules struct {
	Steps100        int64 `toml:"steps_100"`
	Steps1000Bonus  int64 `toml:"steps_1000_bonus"`
	Steps5000Bonus  int64 `toml:"steps_5000_bonus"`
	Steps10000Bonus int64 `toml:"steps_10000_bonus"`

	ExerciseMinute         int64   `toml:"exercise_minute"`
	ExerciseSession        int64   `toml:"exercise_session"`
	ExerciseSessionMinutes float64 `toml:"exercise_session_minutes"`

	MeditationMinute         int64   `toml:"meditation_minute"`
	MeditationSession        int64   `toml:"meditation_session"`
	MeditationSessionMinutes float64 `toml:"meditation_session_minutes"`

	LogMeal     int64 `toml:"log_meal"`
	HealthyMeal int64 `toml:"healthy_meal"`

	SleepHour       int64   `toml:"sleep_hour"`
	PerfectSleep    int64   `toml:"perfect_sleep"`
	PerfectSleepMin float64 `toml:"perfect_sleep_min"`
	PerfectSleepMax float64 `toml:"perfect_sleep_max"`

	WaterGlass int64 `toml:"water_glass"`

	DailyQuestComplete  int64 `toml:"daily_quest_complete"`
	WeeklyQuestComplete int64 `toml:"weekly_quest_complete"`
	CustomQuestComplete int64 `toml:"custom_quest_complete"`
}

// GoldRules are the fixed gold payouts.
type GoldRules struct {
	QuestDaily        int64 `toml:"quest_daily"`
	QuestWeekly       int64 `toml:"quest_weekly"`
	AchievementUnlock int64 `toml:"achievement_unlock"`
	LevelUp           int64 `toml:"level_up"`
	StreakMilestone   int64 `toml:"streak_milestone"`
}

// LevelRules is the threshold table. XPThresholds[i] is the total XP needed
// for level i+1, so XPThresholds[0] must be 0.
type LevelRules struct {
	XPThresholds  []int64 `toml:"xp_thresholds"`
	MaxHPPerLevel int     `toml:"max_hp_per_level"`
}

// MaxLevel is the terminal level.
func (l LevelRules) MaxLevel() int {
	return len(l.XPThresholds)
}

// HPRules control damage and healing.
type HPRules struct {
	BaseMaxHP            int  `toml:"base_max_hp"`
	DamagePerMissedDaily int  `toml:"damage_per_missed_daily"`
	HealPerQuestComplete int  `toml:"heal_per_quest_complete"`
	FullHealOnLevelUp    bool `toml:"full_heal_on_level_up"`
}

// StreakRules control milestones and freezes.
type StreakRules struct {
	Milestones []int `toml:"milestones"`
	FreezeCost int64 `toml:"freeze_cost"`
}

// IsMilestone reports whether n is a streak milestone.
func (s StreakRules) IsMilestone(n int) bool {
	for _, m := range s.Milestones {
		if m == n {
			return true
		}
	}
	return false
}

// DifficultyRules scale custom quest rewards.
type DifficultyRules struct {
	Easy   float64 `toml:"easy"`
	Medium float64 `toml:"medium"`
	Hard   float64 `toml:"hard"`
	Epic   float64 `toml:"epic"`
}

// Multiplier returns the reward multiplier for d. Unknown difficulties
// scale by 1.
func (d DifficultyRules) Multiplier(q QuestDifficulty) float64 {
	switch q {
	case DifficultyEasy:
		return d.Easy
	case DifficultyMedium:
		return d.Medium
	case DifficultyHard:
		return d.Hard
	case DifficultyEpic:
		return d.Epic
	}
	return 1
}

// ClassRules are the average-per-day thresholds of the character classes.
type ClassRules struct {
	WarriorExerciseMinutes float64 `toml:"warrior_exercise_minutes"`
	MonkMeditationMinutes  float64 `toml:"monk_meditation_minutes"`
	AssassinSteps          float64 `toml:"assassin_steps"`
}

// DefaultGameRules returns the stock balance table.
func DefaultGameRules() GameRules {
	return GameRules{
		XP: XPRules{
			Steps100:        1,
			Steps1000Bonus:  12,
			Steps5000Bonus:  75,
			Steps10000Bonus: 200,

			ExerciseMinute:         2,
			ExerciseSession:        50,
			ExerciseSessionMinutes: 30,

			MeditationMinute:         3,
			MeditationSession:        40,
			MeditationSessionMinutes: 10,

			LogMeal:     10,
			HealthyMeal: 25,

			SleepHour:       5,
			PerfectSleep:    50,
			PerfectSleepMin: 7,
			PerfectSleepMax: 9,

			WaterGlass: 5,

			DailyQuestComplete:  50,
			WeeklyQuestComplete: 200,
			CustomQuestComplete: 100,
		},
		Gold: GoldRules{
			QuestDaily:        25,
			QuestWeekly:       100,
			AchievementUnlock: 50,
			LevelUp:           100,
			StreakMilestone:   75,
		},
		Levels: LevelRules{
			XPThresholds: []int64{
				0, 100, 250, 500, 850, 1300, 1850, 2500, 3250, 4100,
				5050, 6100, 7250, 8500, 9850, 11300, 12850, 14500, 16250, 18100,
				20050, 22100, 24250, 26500, 28850, 31300, 33850, 36500, 39250, 42100,
			},
			MaxHPPerLevel: 10,
		},
		HP: HPRules{
			BaseMaxHP:            100,
			DamagePerMissedDaily: 15,
			HealPerQuestComplete: 5,
			FullHealOnLevelUp:    true,
		},
		Streaks: StreakRules{
			Milestones: []int{3, 7, 14, 30, 60, 90, 180, 365},
			FreezeCost: 50,
		},
		Difficulty: DifficultyRules{Easy: 1, Medium: 1.5, Hard: 2, Epic: 3},
		Classes:    ClassRules{WarriorExerciseMinutes: 30, MonkMeditationMinutes: 15, AssassinSteps: 10000},
	}
}

// Validate checks the structural invariants the engine relies on.
func (r GameRules) Validate() error {
	t := r.Levels.XPThresholds
	if len(t) == 0 {
		return errors.New("rules: xp_thresholds is empty")
	}
	if t[0] != 0 {
		return fmt.Errorf("rules: xp_thresholds[0] must be 0, got %d", t[0])
	}
	for i := 1; i < len(t); i++ {
		if t[i] <= t[i-1] {
			return fmt.Errorf("rules: xp_thresholds not strictly increasing at level %d", i+1)
		}
	}
	if r.HP.BaseMaxHP <= 0 {
		return fmt.Errorf("rules: base_max_hp must be positive, got %d", r.HP.BaseMaxHP)
	}
	if c := r.Classes; c.WarriorExerciseMinutes <= 0 || c.MonkMeditationMinutes <= 0 || c.AssassinSteps <= 0 {
		return errors.New("rules: class thresholds must be positive")
	}
	if r.Streaks.FreezeCost < 0 {
		return fmt.Errorf("rules: freeze_cost must not be negative, got %d", r.Streaks.FreezeCost)
	}
	return nil
}
