// Package domain — health activity records and the per-day aggregates
// derived from them. Records are immutable once logged except through an
// explicit correction.
package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"time"
)

// ─── Activity Types ─────────────────────────────────────────────────────────

// ActivityType identifies what a health record measures.
type ActivityType string

const (
	ActivitySteps      ActivityType = "steps"
	ActivityExercise   ActivityType = "exercise"
	ActivityMeditation ActivityType = "meditation"
	ActivityMeal       ActivityType = "meal"
	ActivityWater      ActivityType = "water"
	ActivitySleep      ActivityType = "sleep"
)

// AllActivityTypes lists every supported activity type in display order.
func AllActivityTypes() []ActivityType {
	return []ActivityType{
		ActivitySteps, ActivityExercise, ActivityMeditation,
		ActivityMeal, ActivityWater, ActivitySleep,
	}
}

// IsValid reports whether t is one of the known activity types.
func (t ActivityType) IsValid() bool {
	return slices.Contains(AllActivityTypes(), t)
}

// DefaultUnit returns the unit recorded when the caller gives none.
func (t ActivityType) DefaultUnit() string {
	switch t {
	case ActivitySteps:
		return "steps"
	case ActivityExercise, ActivityMeditation:
		return "minutes"
	case ActivityMeal:
		return "meals"
	case ActivityWater:
		return "glasses"
	case ActivitySleep:
		return "hours"
	}
	return ""
}

// MaxValue is the largest value one record of type t may carry. Larger
// values are rejected so reward arithmetic stays in range.
func (t ActivityType) MaxValue() float64 {
	switch t {
	case ActivitySteps:
		return 200_000
	case ActivityExercise, ActivityMeditation:
		return minutesPerDay
	case ActivityMeal:
		return 10_000
	case ActivityWater:
		return 100
	case ActivitySleep:
		return 24
	}
	return 0
}

const (
	minutesPerDay = 24 * 60
	maxCalories   = 100_000
	maxHeartRate  = 300
)

// ActivitySource tells where a record came from.
type ActivitySource string

const (
	SourceManual       ActivitySource = "manual"
	SourceExternalSync ActivitySource = "external_sync"
)

// SleepQuality is the self-reported or device-reported sleep rating.
type SleepQuality string

const (
	SleepPoor      SleepQuality = "poor"
	SleepFair      SleepQuality = "fair"
	SleepGood      SleepQuality = "good"
	SleepExcellent SleepQuality = "excellent"
)

// ─── Metadata (one shape per activity type) ─────────────────────────────────

// ActivityMetadata is the optional per-type detail attached to a record.
// Only the types in this file implement it.
type ActivityMetadata interface {
	ActivityType() ActivityType
}

// StepsDetails carries optional detail for a steps record.
type StepsDetails struct {
	Calories float64 `json:"calories,omitempty"`
}

// ExerciseDetails carries session detail for an exercise record.
type ExerciseDetails struct {
	DurationMinutes float64 `json:"duration,omitempty"`
	Calories        float64 `json:"calories,omitempty"`
	HeartRate       float64 `json:"heart_rate,omitempty"`
	Notes           string  `json:"notes,omitempty"`
}

// MeditationDetails carries session detail for a meditation record.
type MeditationDetails struct {
	DurationMinutes float64 `json:"duration,omitempty"`
	Notes           string  `json:"notes,omitempty"`
}

// SleepDetails carries session detail for a sleep record.
type SleepDetails struct {
	DurationMinutes float64      `json:"duration,omitempty"`
	Quality         SleepQuality `json:"quality,omitempty"`
	Notes           string       `json:"notes,omitempty"`
}

// MealDetails carries detail for a meal record.
type MealDetails struct {
	Calories float64 `json:"calories,omitempty"`
	Healthy  bool    `json:"healthy,omitempty"`
	Notes    string  `json:"notes,omitempty"`
}

// WaterDetails carries detail for a water record.
type WaterDetails struct {
	Notes string `json:"notes,omitempty"`
}

func (StepsDetails) ActivityType() ActivityType      { return ActivitySteps }
func (ExerciseDetails) ActivityType() ActivityType   { return ActivityExercise }
func (MeditationDetails) ActivityType() ActivityType { return ActivityMeditation }
func (SleepDetails) ActivityType() ActivityType      { return ActivitySleep }
func (MealDetails) ActivityType() ActivityType       { return ActivityMeal }
func (WaterDetails) ActivityType() ActivityType      { return ActivityWater }

// DecodeMetadata parses raw JSON metadata into the shape owned by t.
// Empty input yields nil metadata.
func DecodeMetadata(t ActivityType, raw []byte) (ActivityMetadata, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var (
		md  ActivityMetadata
		err error
	)
	switch t {
	case ActivitySteps:
		var d StepsDetails
		err = json.Unmarshal(raw, &d)
		md = d
	case ActivityExercise:
		var d ExerciseDetails
		err = json.Unmarshal(raw, &d)
		md = d
	case ActivityMeditation:
		var d MeditationDetails
		err = json.Unmarshal(raw, &d)
		md = d
	case ActivitySleep:
		var d SleepDetails
		err = json.Unmarshal(raw, &d)
		md = d
	case ActivityMeal:
		var d MealDetails
		err = json.Unmarshal(raw, &d)
		md = d
	case ActivityWater:
		var d WaterDetails
		err = json.Unmarshal(raw, &d)
		md = d
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidActivity, t)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s metadata: %w", t, err)
	}
	return md, nil
}

// ─── Activity Record ────────────────────────────────────────────────────────

// ActivityRecord is one logged or imported health measurement.
type ActivityRecord struct {
	ID       string
	Type     ActivityType
	Date     time.Time
	Value    float64
	Unit     string
	Source   ActivitySource
	Metadata ActivityMetadata
}

// Validate checks that the record is well-formed: known type, a finite
// value within the type's range, and metadata (if any) belonging to the
// same type.
func (a ActivityRecord) Validate() error {
	if !a.Type.IsValid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidActivity, a.Type)
	}
	if err := checkAmount("value", a.Value, a.Type.MaxValue()); err != nil {
		return err
	}
	if a.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidActivity)
	}
	if a.Metadata == nil {
		return nil
	}
	if a.Metadata.ActivityType() != a.Type {
		return fmt.Errorf("%w: %s metadata on %s record",
			ErrInvalidActivity, a.Metadata.ActivityType(), a.Type)
	}
	return validateMetadata(a.Metadata)
}

func validateMetadata(md ActivityMetadata) error {
	var err error
	switch d := md.(type) {
	case StepsDetails:
		err = checkAmount("calories", d.Calories, maxCalories)
	case ExerciseDetails:
		if err = checkAmount("duration", d.DurationMinutes, minutesPerDay); err == nil {
			if err = checkAmount("calories", d.Calories, maxCalories); err == nil {
				err = checkAmount("heart_rate", d.HeartRate, maxHeartRate)
			}
		}
	case MeditationDetails:
		err = checkAmount("duration", d.DurationMinutes, minutesPerDay)
	case SleepDetails:
		err = checkAmount("duration", d.DurationMinutes, minutesPerDay)
	case MealDetails:
		err = checkAmount("calories", d.Calories, maxCalories)
	}
	return err
}

// checkAmount rejects NaN, infinities, negatives and values above limit.
func checkAmount(field string, v, limit float64) error {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return fmt.Errorf("%w: %s is not a finite number", ErrInvalidActivity, field)
	case v < 0:
		return fmt.Errorf("%w: negative %s %v", ErrInvalidActivity, field, v)
	case v > limit:
		return fmt.Errorf("%w: %s %v exceeds %v", ErrInvalidActivity, field, v, limit)
	}
	return nil
}

// Magnitude returns the amount this record contributes to its daily
// aggregate. Exercise and meditation prefer the session duration when set.
func (a ActivityRecord) Magnitude() float64 {
	switch md := a.Metadata.(type) {
	case ExerciseDetails:
		if md.DurationMinutes > 0 {
			return md.DurationMinutes
		}
	case MeditationDetails:
		if md.DurationMinutes > 0 {
			return md.DurationMinutes
		}
	}
	if a.Type == ActivityMeal {
		return 1
	}
	return a.Value
}

// SleepQuality returns the reported quality of a sleep record, or "".
func (a ActivityRecord) SleepQuality() SleepQuality {
	if md, ok := a.Metadata.(SleepDetails); ok {
		return md.Quality
	}
	return ""
}

type activityJSON struct {
	ID       string          `json:"id"`
	Type     ActivityType    `json:"type"`
	Date     time.Time       `json:"date"`
	Value    float64         `json:"value"`
	Unit     string          `json:"unit"`
	Source   ActivitySource  `json:"source"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

// MarshalJSON encodes the record with its metadata inline.
func (a ActivityRecord) MarshalJSON() ([]byte, error) {
	out := activityJSON{
		ID: a.ID, Type: a.Type, Date: a.Date,
		Value: a.Value, Unit: a.Unit, Source: a.Source,
	}
	if a.Metadata != nil {
		raw, err := json.Marshal(a.Metadata)
		if err != nil {
			return nil, err
		}
		out.Metadata = raw
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a record, resolving metadata by the record type.
func (a *ActivityRecord) UnmarshalJSON(b []byte) error {
	var in activityJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	md, err := DecodeMetadata(in.Type, in.Metadata)
	if err != nil {
		return err
	}
	*a = ActivityRecord{
		ID: in.ID, Type: in.Type, Date: in.Date,
		Value: in.Value, Unit: in.Unit, Source: in.Source,
		Metadata: md,
	}
	return nil
}

// ─── Daily Summary ──────────────────────────────────────────────────────────

// ProgressMetric names a DailySummary field that quests can track.
type ProgressMetric string

const (
	MetricSteps             ProgressMetric = "steps"
	MetricExerciseMinutes   ProgressMetric = "exercise_minutes"
	MetricMeditationMinutes ProgressMetric = "meditation_minutes"
	MetricWaterGlasses      ProgressMetric = "water_glasses"
	MetricMealsLogged       ProgressMetric = "meals_logged"
	MetricSleepHours        ProgressMetric = "sleep_hours"
)

// DailySummary aggregates one calendar day. Activity totals are derived
// from the ledger; the earnings fields are filled in by quest and
// character transitions.
type DailySummary struct {
	Date              time.Time `json:"date"`
	Steps             float64   `json:"steps"`
	ExerciseMinutes   float64   `json:"exercise_minutes"`
	MeditationMinutes float64   `json:"meditation_minutes"`
	WaterGlasses      float64   `json:"water_glasses"`
	MealsLogged       int       `json:"meals_logged"`
	SleepHours        float64   `json:"sleep_hours"`

	QuestsCompleted  int   `json:"quests_completed"`
	XPEarned         int64 `json:"xp_earned"`
	GoldEarned       int64 `json:"gold_earned"`
	StreakMaintained bool  `json:"streak_maintained"`
}

// Metric returns the summary field tracked by m (0 for unknown metrics).
func (d DailySummary) Metric(m ProgressMetric) float64 {
	switch m {
	case MetricSteps:
		return d.Steps
	case MetricExerciseMinutes:
		return d.ExerciseMinutes
	case MetricMeditationMinutes:
		return d.MeditationMinutes
	case MetricWaterGlasses:
		return d.WaterGlasses
	case MetricMealsLogged:
		return float64(d.MealsLogged)
	case MetricSleepHours:
		return d.SleepHours
	}
	return 0
}

// Add folds one record into the activity totals.
func (d *DailySummary) Add(a ActivityRecord) {
	switch a.Type {
	case ActivitySteps:
		d.Steps += a.Magnitude()
	case ActivityExercise:
		d.ExerciseMinutes += a.Magnitude()
	case ActivityMeditation:
		d.MeditationMinutes += a.Magnitude()
	case ActivityWater:
		d.WaterGlasses += a.Magnitude()
	case ActivityMeal:
		d.MealsLogged++
	case ActivitySleep:
		d.SleepHours += a.Magnitude()
	}
}

// HasActivity reports whether any activity total is non-zero.
func (d DailySummary) HasActivity() bool {
	return d.Steps > 0 || d.ExerciseMinutes > 0 || d.MeditationMinutes > 0 ||
		d.WaterGlasses > 0 || d.MealsLogged > 0 || d.SleepHours > 0
}
