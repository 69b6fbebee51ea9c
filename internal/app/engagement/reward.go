package engagement

import (
	"math"

	"github.com/vitalquest/vitalquest/internal/domain"
)

// ─── Reward Calculator ──────────────────────────────────────────────────────
// Base rate times magnitude plus at most one threshold bonus. Products are
// floored to whole XP. Amounts are capped at maxRewardAmount before any
// conversion so no input can overflow int64.

const maxRewardAmount = 1e9

// StepsXP returns XP for a daily step total. Only the highest tier crossed
// pays its bonus.
func (r Rulebook) StepsXP(steps float64) int64 {
	steps = capAmount(steps)
	if steps <= 0 {
		return 0
	}
	x := r.rules.XP
	xp := int64(math.Floor(steps/100)) * x.Steps100
	switch {
	case steps >= 10000:
		xp += x.Steps10000Bonus
	case steps >= 5000:
		xp += x.Steps5000Bonus
	case steps >= 1000:
		xp += x.Steps1000Bonus
	}
	return xp
}

// ExerciseXP returns XP for an exercise session of the given minutes.
func (r Rulebook) ExerciseXP(minutes float64) int64 {
	x := r.rules.XP
	return r.sessionXP(minutes, x.ExerciseMinute, x.ExerciseSession, x.ExerciseSessionMinutes)
}

// MeditationXP returns XP for a meditation session of the given minutes.
func (r Rulebook) MeditationXP(minutes float64) int64 {
	x := r.rules.XP
	return r.sessionXP(minutes, x.MeditationMinute, x.MeditationSession, x.MeditationSessionMinutes)
}

func (r Rulebook) sessionXP(minutes float64, perMinute, bonus int64, bonusAt float64) int64 {
	minutes = capAmount(minutes)
	if minutes <= 0 {
		return 0
	}
	xp := floorXP(minutes, perMinute)
	if minutes >= bonusAt {
		xp += bonus
	}
	return xp
}

// SleepXP returns XP for a night's sleep. The perfect-sleep bonus applies
// to the inclusive hour window.
func (r Rulebook) SleepXP(hours float64) int64 {
	hours = capAmount(hours)
	if hours <= 0 {
		return 0
	}
	x := r.rules.XP
	xp := floorXP(hours, x.SleepHour)
	if hours >= x.PerfectSleepMin && hours <= x.PerfectSleepMax {
		xp += x.PerfectSleep
	}
	return xp
}

// WaterXP is strictly linear in glasses.
func (r Rulebook) WaterXP(glasses float64) int64 {
	if glasses <= 0 {
		return 0
	}
	return floorXP(glasses, r.rules.XP.WaterGlass)
}

// MealXP returns the flat meal reward.
func (r Rulebook) MealXP(healthy bool) int64 {
	if healthy {
		return r.rules.XP.HealthyMeal
	}
	return r.rules.XP.LogMeal
}

// XPForActivity is the single dispatch every entry path uses. Meals pay the
// flat rate regardless of value. Unknown types pay nothing.
func (r Rulebook) XPForActivity(t domain.ActivityType, value float64) int64 {
	switch t {
	case domain.ActivitySteps:
		return r.StepsXP(value)
	case domain.ActivityExercise:
		return r.ExerciseXP(value)
	case domain.ActivityMeditation:
		return r.MeditationXP(value)
	case domain.ActivitySleep:
		return r.SleepXP(value)
	case domain.ActivityWater:
		return r.WaterXP(value)
	case domain.ActivityMeal:
		return r.MealXP(false)
	}
	return 0
}

// DailyActivityXP returns the XP a whole day of activity is worth when
// scored at once.
func (r Rulebook) DailyActivityXP(d domain.DailySummary) int64 {
	return r.StepsXP(d.Steps) +
		r.ExerciseXP(d.ExerciseMinutes) +
		r.MeditationXP(d.MeditationMinutes) +
		r.WaterXP(d.WaterGlasses) +
		r.SleepXP(d.SleepHours) +
		int64(d.MealsLogged)*r.MealXP(false)
}

func floorXP(amount float64, rate int64) int64 {
	return int64(math.Floor(capAmount(amount) * float64(rate)))
}

// capAmount maps NaN to 0 and clamps to [0, maxRewardAmount].
func capAmount(v float64) float64 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	return min(v, maxRewardAmount)
}
