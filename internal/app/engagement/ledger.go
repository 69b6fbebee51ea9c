package engagement

import (
	"slices"
	"time"

	"github.com/vitalquest/vitalquest/internal/domain"
)

// ─── Activity Ledger ────────────────────────────────────────────────────────
// Records are appended on log or import and only change through
// UpdateActivity or DeleteActivity. The activity totals of a DailySummary
// are always rebuilt from the records of that day.

// AddActivity appends a record, rebuilds its day and pays XP through
// XPForActivity. Steps pay the difference in daily-total steps XP so a tier
// bonus is paid once, when the day first crosses it. Invalid records and
// duplicate ids are a no-op.
func (r Rulebook) AddActivity(s domain.GameState, rec domain.ActivityRecord, now time.Time) domain.GameState {
	if s.User == nil || rec.Validate() != nil {
		return s
	}
	if rec.ID != "" && s.ActivityIndex(rec.ID) >= 0 {
		return s
	}
	next := s.Clone()
	r.appendActivity(&next, rec, now)
	return next
}

// ImportActivities appends a batch from an external sync. Every record is
// marked external_sync. Records that fail validation or whose id is already
// in the ledger are skipped, so re-running a sync is harmless.
func (r Rulebook) ImportActivities(s domain.GameState, recs []domain.ActivityRecord, now time.Time) domain.GameState {
	if s.User == nil || len(recs) == 0 {
		return s
	}
	next := s.Clone()
	for _, rec := range recs {
		if rec.Validate() != nil {
			continue
		}
		if rec.ID != "" && next.ActivityIndex(rec.ID) >= 0 {
			continue
		}
		rec.Source = domain.SourceExternalSync
		r.appendActivity(&next, rec, now)
	}
	return next
}

// UpdateActivity replaces a record as an explicit correction. Both the old
// and the new day are rebuilt. XP already paid is not revisited.
func (r Rulebook) UpdateActivity(s domain.GameState, rec domain.ActivityRecord) domain.GameState {
	if s.User == nil || rec.Validate() != nil {
		return s
	}
	i := s.ActivityIndex(rec.ID)
	if i < 0 {
		return s
	}
	next := s.Clone()
	old := next.Activities[i]
	if rec.Unit == "" {
		rec.Unit = rec.Type.DefaultUnit()
	}
	if rec.Source == "" {
		rec.Source = old.Source
	}
	next.Activities[i] = rec
	adjustTotals(&next.User.Stats, old, -1)
	adjustTotals(&next.User.Stats, rec, 1)
	r.rebuildDay(&next, old.Date)
	r.rebuildDay(&next, rec.Date)
	return next
}

// DeleteActivity removes a record and rebuilds its day.
func (r Rulebook) DeleteActivity(s domain.GameState, id string) domain.GameState {
	if s.User == nil {
		return s
	}
	i := s.ActivityIndex(id)
	if i < 0 {
		return s
	}
	next := s.Clone()
	old := next.Activities[i]
	next.Activities = slices.Delete(next.Activities, i, i+1)
	adjustTotals(&next.User.Stats, old, -1)
	r.rebuildDay(&next, old.Date)
	return next
}

// ─── Queries ────────────────────────────────────────────────────────────────

// DailySummary returns the summary of the local day containing date.
func (r Rulebook) DailySummary(s domain.GameState, date time.Time) (domain.DailySummary, bool) {
	sum, ok := s.DailySummaries[r.DayKey(date)]
	return sum, ok
}

// ActivitiesInRange returns records with start <= Date < end, oldest first.
func (r Rulebook) ActivitiesInRange(s domain.GameState, start, end time.Time) []domain.ActivityRecord {
	var out []domain.ActivityRecord
	for _, a := range s.Activities {
		if !a.Date.Before(start) && a.Date.Before(end) {
			out = append(out, a)
		}
	}
	slices.SortStableFunc(out, func(a, b domain.ActivityRecord) int { return a.Date.Compare(b.Date) })
	return out
}

// TodayActivities returns the records of the local day containing now.
func (r Rulebook) TodayActivities(s domain.GameState, now time.Time) []domain.ActivityRecord {
	start := r.StartOfDay(now)
	return r.ActivitiesInRange(s, start, start.AddDate(0, 0, 1))
}

// ─── Internals ──────────────────────────────────────────────────────────────

func (r Rulebook) appendActivity(s *domain.GameState, rec domain.ActivityRecord, now time.Time) {
	if rec.ID == "" {
		rec.ID = r.newID()
	}
	if rec.Unit == "" {
		rec.Unit = rec.Type.DefaultUnit()
	}
	if rec.Source == "" {
		rec.Source = domain.SourceManual
	}

	before := r.summaryFor(s, rec.Date)
	s.Activities = append(s.Activities, rec)
	r.rebuildDay(s, rec.Date)
	after := s.DailySummaries[r.DayKey(rec.Date)]

	var xp int64
	if rec.Type == domain.ActivitySteps {
		xp = r.StepsXP(after.Steps) - r.StepsXP(before.Steps)
	} else {
		xp = r.XPForActivity(rec.Type, rec.Magnitude())
	}

	stats := &s.User.Stats
	adjustTotals(stats, rec, 1)
	if now.After(stats.LastActiveDate) {
		stats.LastActiveDate = now
	}
	if xp > 0 {
		r.grantXP(s, xp, now)
	}
	// Backfilled days do not count toward the activity streak.
	if r.SameDay(rec.Date, now) {
		r.bumpStreak(s, domain.StreakActivity, string(rec.Type), now)
	}
	r.classify(s, now)
}

// rebuildDay recomputes the activity totals of one day from the ledger,
// keeping the earnings fields.
func (r Rulebook) rebuildDay(s *domain.GameState, day time.Time) {
	key := r.DayKey(day)
	sum := r.summaryFor(s, day)
	fresh := domain.DailySummary{
		Date:             r.StartOfDay(day),
		QuestsCompleted:  sum.QuestsCompleted,
		XPEarned:         sum.XPEarned,
		GoldEarned:       sum.GoldEarned,
		StreakMaintained: sum.StreakMaintained,
	}
	for _, a := range s.Activities {
		if r.DayKey(a.Date) == key {
			fresh.Add(a)
		}
	}
	s.DailySummaries[key] = fresh
}

// adjustTotals folds a record into (sign 1) or out of (sign -1) the
// lifetime totals.
func adjustTotals(stats *domain.UserStats, rec domain.ActivityRecord, sign float64) {
	v := rec.Magnitude() * sign
	switch rec.Type {
	case domain.ActivitySteps:
		stats.TotalSteps = max(stats.TotalSteps+v, 0)
	case domain.ActivityExercise:
		stats.TotalExerciseMinutes = max(stats.TotalExerciseMinutes+v, 0)
	case domain.ActivityMeditation:
		stats.TotalMeditationMinutes = max(stats.TotalMeditationMinutes+v, 0)
	}
}
