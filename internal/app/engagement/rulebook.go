// Package engagement implements the VitalQuest rules engine.
// Health activity in, character progression out: rewards, levels, quests,
// achievements, streaks and notifications.
//
// Every transition is a method on Rulebook with the shape
//
//	func (r Rulebook) Op(s domain.GameState, ..., now time.Time) domain.GameState
//
// It clones s, applies every effect to the clone and returns it. Callers
// either see the old state or the complete new one. Invalid-but-plausible
// input (unknown ids, repeated completions, a missing user) returns s
// unchanged. Engine owns the single live state and persistence.
package engagement

import (
	"time"

	"github.com/google/uuid"

	"github.com/vitalquest/vitalquest/internal/domain"
)

// Rulebook binds the balance table to the calendar the player lives in.
type Rulebook struct {
	rules domain.GameRules
	loc   *time.Location
	newID func() string
}

// NewRulebook creates a rulebook. A nil location means UTC.
func NewRulebook(rules domain.GameRules, loc *time.Location) Rulebook {
	if loc == nil {
		loc = time.UTC
	}
	return Rulebook{rules: rules, loc: loc, newID: uuid.NewString}
}

// DefaultRulebook returns the stock balance table in UTC.
func DefaultRulebook() Rulebook {
	return NewRulebook(domain.DefaultGameRules(), time.UTC)
}

// Rules returns the balance table.
func (r Rulebook) Rules() domain.GameRules { return r.rules }

// Location returns the time zone calendar days are computed in.
func (r Rulebook) Location() *time.Location { return r.loc }

// ─── Calendar ───────────────────────────────────────────────────────────────

// StartOfDay returns local midnight of the day containing t.
func (r Rulebook) StartOfDay(t time.Time) time.Time {
	t = t.In(r.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, r.loc)
}

// DayKey returns the "2006-01-02" key of the local day containing t.
func (r Rulebook) DayKey(t time.Time) string {
	return t.In(r.loc).Format(time.DateOnly)
}

// SameDay reports whether a and b fall on the same local day.
func (r Rulebook) SameDay(a, b time.Time) bool {
	return r.DayKey(a) == r.DayKey(b)
}

// summaryFor returns the summary for the day of t, creating an empty one.
func (r Rulebook) summaryFor(s *domain.GameState, t time.Time) domain.DailySummary {
	if s.DailySummaries == nil {
		s.DailySummaries = make(map[string]domain.DailySummary)
	}
	key := r.DayKey(t)
	sum, ok := s.DailySummaries[key]
	if !ok {
		sum = domain.DailySummary{Date: r.StartOfDay(t)}
	}
	return sum
}

// editSummary applies fn to the summary of the day of t and stores it.
func (r Rulebook) editSummary(s *domain.GameState, t time.Time, fn func(*domain.DailySummary)) {
	sum := r.summaryFor(s, t)
	fn(&sum)
	s.DailySummaries[r.DayKey(t)] = sum
}
