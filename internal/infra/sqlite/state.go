package sqlite

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/vitalquest/vitalquest/internal/domain"
)

// stateKey holds the JSON snapshot of everything except the ledger and the
// summaries, which live in their own tables. revisionKey counts saves.
const (
	stateKey    = "game_state"
	revisionKey = "state_revision"
)

// SaveState replaces the stored state in a single transaction, provided the
// stored revision still equals expected.
func (d *DB) SaveState(s domain.GameState, expected int64) (int64, error) {
	snapshot := s
	snapshot.Activities = nil
	snapshot.DailySummaries = nil
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return 0, fmt.Errorf("encode state: %w", err)
	}

	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	cur, err := readRevision(tx)
	if err != nil {
		return 0, err
	}
	if cur != expected {
		return cur, fmt.Errorf("%w: revision %d, expected %d", domain.ErrStaleState, cur, expected)
	}
	rev := cur + 1

	if err := setEngagement(tx, stateKey, string(raw)); err != nil {
		return 0, fmt.Errorf("save snapshot: %w", err)
	}
	if err := setEngagement(tx, revisionKey, strconv.FormatInt(rev, 10)); err != nil {
		return 0, fmt.Errorf("save revision: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM activities`); err != nil {
		return 0, fmt.Errorf("clear activities: %w", err)
	}
	for _, a := range s.Activities {
		if err := insertActivity(tx, a); err != nil {
			return 0, fmt.Errorf("insert activity %s: %w", a.ID, err)
		}
	}

	if _, err := tx.Exec(`DELETE FROM daily_summaries`); err != nil {
		return 0, fmt.Errorf("clear summaries: %w", err)
	}
	for day, sum := range s.DailySummaries {
		if err := insertSummary(tx, day, sum); err != nil {
			return 0, fmt.Errorf("insert summary %s: %w", day, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return rev, nil
}

// StateRevision returns the revision of the stored state (0 when nothing
// has been saved).
func (d *DB) StateRevision() (int64, error) {
	return readRevision(d.db)
}

func readRevision(q queryer) (int64, error) {
	raw, err := getEngagement(q, revisionKey)
	if err != nil {
		return 0, fmt.Errorf("get revision: %w", err)
	}
	if raw == "" {
		return 0, nil
	}
	rev, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse revision %q: %w", raw, err)
	}
	return rev, nil
}

// LoadState reads the stored state and its revision. A fresh database
// yields an empty state at revision 0.
func (d *DB) LoadState() (domain.GameState, int64, error) {
	s := domain.GameState{DailySummaries: make(map[string]domain.DailySummary)}

	tx, err := d.db.Begin()
	if err != nil {
		return s, 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	rev, err := readRevision(tx)
	if err != nil {
		return s, 0, err
	}
	raw, err := getEngagement(tx, stateKey)
	if err != nil {
		return s, 0, fmt.Errorf("get snapshot: %w", err)
	}
	if raw == "" {
		return s, rev, nil
	}
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return s, 0, fmt.Errorf("decode snapshot: %w", err)
	}

	rows, err := tx.Query(
		`SELECT id, type, date, value, unit, source, metadata FROM activities ORDER BY date ASC, id ASC`,
	)
	if err != nil {
		return s, 0, fmt.Errorf("load activities: %w", err)
	}
	s.Activities, err = collectActivities(rows)
	rows.Close()
	if err != nil {
		return s, 0, fmt.Errorf("scan activities: %w", err)
	}

	sumRows, err := tx.Query(
		`SELECT day, date, steps, exercise_minutes, meditation_minutes, water_glasses,
		        meals_logged, sleep_hours, quests_completed, xp_earned, gold_earned, streak_maintained
		 FROM daily_summaries`,
	)
	if err != nil {
		return s, 0, fmt.Errorf("load summaries: %w", err)
	}
	defer sumRows.Close()

	s.DailySummaries = make(map[string]domain.DailySummary)
	for sumRows.Next() {
		day, sum, err := scanSummary(sumRows)
		if err != nil {
			return s, 0, fmt.Errorf("scan summary: %w", err)
		}
		s.DailySummaries[day] = sum
	}
	if err := sumRows.Err(); err != nil {
		return s, 0, err
	}
	return s, rev, nil
}

// Compile-time interface check.
var _ domain.StateStore = (*DB)(nil)
