package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vitalquest/vitalquest/internal/domain"
)

// ─── Activity Ledger ────────────────────────────────────────────────────────

// ListActivities returns records with start <= date < end, oldest first.
func (d *DB) ListActivities(start, end time.Time) ([]domain.ActivityRecord, error) {
	rows, err := d.db.Query(
		`SELECT id, type, date, value, unit, source, metadata
		 FROM activities WHERE date >= ? AND date < ? ORDER BY date ASC`,
		start.UnixNano(), end.UnixNano(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectActivities(rows)
}

// ActivityCount returns the number of stored records.
func (d *DB) ActivityCount() (int, error) {
	var n int
	err := d.db.QueryRow(`SELECT COUNT(*) FROM activities`).Scan(&n)
	return n, err
}

func insertActivity(tx execer, a domain.ActivityRecord) error {
	var md sql.NullString
	if a.Metadata != nil {
		raw, err := json.Marshal(a.Metadata)
		if err != nil {
			return fmt.Errorf("encode metadata for %s: %w", a.ID, err)
		}
		md = sql.NullString{String: string(raw), Valid: true}
	}
	_, err := tx.Exec(
		`INSERT INTO activities (id, type, date, value, unit, source, metadata)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, string(a.Type), a.Date.UnixNano(), a.Value, a.Unit, string(a.Source), md,
	)
	return err
}

func collectActivities(rows *sql.Rows) ([]domain.ActivityRecord, error) {
	var out []domain.ActivityRecord
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanActivity(s scanner) (domain.ActivityRecord, error) {
	var (
		a       domain.ActivityRecord
		typ     string
		source  string
		dateNs  int64
		rawMeta sql.NullString
	)
	if err := s.Scan(&a.ID, &typ, &dateNs, &a.Value, &a.Unit, &source, &rawMeta); err != nil {
		return a, err
	}
	a.Type = domain.ActivityType(typ)
	a.Source = domain.ActivitySource(source)
	a.Date = time.Unix(0, dateNs).UTC()
	if rawMeta.Valid {
		md, err := domain.DecodeMetadata(a.Type, []byte(rawMeta.String))
		if err != nil {
			return a, fmt.Errorf("activity %s: %w", a.ID, err)
		}
		a.Metadata = md
	}
	return a, nil
}

// ─── Daily Summaries ────────────────────────────────────────────────────────

// SummariesBetween returns summaries for days in [fromDay, toDay]
// (YYYY-MM-DD, inclusive), oldest first.
func (d *DB) SummariesBetween(fromDay, toDay string) ([]domain.DailySummary, error) {
	rows, err := d.db.Query(
		`SELECT day, date, steps, exercise_minutes, meditation_minutes, water_glasses,
		        meals_logged, sleep_hours, quests_completed, xp_earned, gold_earned, streak_maintained
		 FROM daily_summaries WHERE day >= ? AND day <= ? ORDER BY day ASC`,
		fromDay, toDay,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.DailySummary
	for rows.Next() {
		_, s, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func insertSummary(tx execer, day string, s domain.DailySummary) error {
	_, err := tx.Exec(
		`INSERT INTO daily_summaries (day, date, steps, exercise_minutes, meditation_minutes,
			water_glasses, meals_logged, sleep_hours, quests_completed, xp_earned, gold_earned, streak_maintained)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		day, s.Date.UnixNano(), s.Steps, s.ExerciseMinutes, s.MeditationMinutes,
		s.WaterGlasses, s.MealsLogged, s.SleepHours, s.QuestsCompleted,
		s.XPEarned, s.GoldEarned, s.StreakMaintained,
	)
	return err
}

func scanSummary(sc scanner) (string, domain.DailySummary, error) {
	var (
		day    string
		s      domain.DailySummary
		dateNs int64
	)
	err := sc.Scan(&day, &dateNs, &s.Steps, &s.ExerciseMinutes, &s.MeditationMinutes,
		&s.WaterGlasses, &s.MealsLogged, &s.SleepHours, &s.QuestsCompleted,
		&s.XPEarned, &s.GoldEarned, &s.StreakMaintained)
	if err != nil {
		return "", s, err
	}
	s.Date = time.Unix(0, dateNs).UTC()
	return day, s, nil
}
