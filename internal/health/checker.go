// Package health runs periodic checks against the store and the live game
// state and exposes the latest results.
package health

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/vitalquest/vitalquest/internal/app/engagement"
	"github.com/vitalquest/vitalquest/internal/domain"
	"github.com/vitalquest/vitalquest/internal/infra/metrics"
	"github.com/vitalquest/vitalquest/internal/infra/sqlite"
)

// DefaultInterval is how often Run repeats the checks.
const DefaultInterval = 60 * time.Second

// Check defines a single health check with optional recovery action.
type Check struct {
	Name      string
	CheckFn   func(ctx context.Context) error
	RecoverFn func(ctx context.Context) error
}

// Status represents the result of a health check.
type Status struct {
	Name      string    `json:"name"`
	Healthy   bool      `json:"healthy"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Checker runs periodic health checks with auto-recovery.
type Checker struct {
	mu       sync.RWMutex
	checks   []Check
	statuses []Status
	interval time.Duration
}

// NewChecker creates a checker for the store, its data directory and the
// engine's live state.
func NewChecker(db *sqlite.DB, eng *engagement.Engine, dataDir string) *Checker {
	return &Checker{
		interval: DefaultInterval,
		checks: []Check{
			{
				Name: "sqlite",
				CheckFn: func(ctx context.Context) error {
					return db.Ping()
				},
			},
			{
				Name: "data_dir",
				CheckFn: func(ctx context.Context) error {
					return checkDataDir(dataDir)
				},
			},
			{
				Name: "state_invariants",
				CheckFn: func(ctx context.Context) error {
					return CheckState(eng.Rulebook(), eng.State())
				},
				RecoverFn: func(ctx context.Context) error {
					return eng.Persist()
				},
			},
		},
	}
}

// WithInterval overrides the check interval.
func (c *Checker) WithInterval(d time.Duration) *Checker {
	if d > 0 {
		c.interval = d
	}
	return c
}

// Run starts the health check loop. Call in a goroutine.
func (c *Checker) Run(ctx context.Context) {
	c.runAll(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.runAll(ctx)
		}
	}
}

func (c *Checker) runAll(ctx context.Context) {
	statuses := make([]Status, len(c.checks))
	for i, check := range c.checks {
		s := Status{
			Name:      check.Name,
			CheckedAt: time.Now(),
		}
		if err := check.CheckFn(ctx); err != nil {
			s.Error = err.Error()
			log.Printf("[health] %s: %v", check.Name, err)
			if check.RecoverFn != nil {
				if rerr := check.RecoverFn(ctx); rerr != nil {
					log.Printf("[health] %s recovery failed: %v", check.Name, rerr)
				}
			}
			metrics.HealthCheckStatus.WithLabelValues(check.Name).Set(0)
		} else {
			s.Healthy = true
			metrics.HealthCheckStatus.WithLabelValues(check.Name).Set(1)
		}
		statuses[i] = s
	}

	c.mu.Lock()
	c.statuses = statuses
	c.mu.Unlock()
}

// Statuses returns the latest health check results.
func (c *Checker) Statuses() []Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]Status, len(c.statuses))
	copy(result, c.statuses)
	return result
}

// IsHealthy returns true if all checks pass.
func (c *Checker) IsHealthy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, s := range c.statuses {
		if !s.Healthy {
			return false
		}
	}
	return true
}

// ─── Check Implementations ──────────────────────────────────────────────────

func checkDataDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("check data dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}

// CheckState verifies the structural invariants of a game state and
// returns every violation found. A state without a user is valid.
func CheckState(book engagement.Rulebook, s domain.GameState) error {
	if s.User == nil {
		return nil
	}
	var errs []error
	c := s.User.Character

	if want := book.LevelForXP(c.TotalXP); c.Level != want {
		errs = append(errs, fmt.Errorf("level %d does not match %d total XP (want %d)", c.Level, c.TotalXP, want))
	}
	if c.HP < 0 || c.HP > c.MaxHP {
		errs = append(errs, fmt.Errorf("hp %d outside [0, %d]", c.HP, c.MaxHP))
	}

	active := make(map[string]bool, len(s.ActiveQuests))
	for _, q := range s.ActiveQuests {
		active[q.ID] = true
	}
	for _, q := range s.CompletedQuests {
		if active[q.ID] {
			errs = append(errs, fmt.Errorf("quest %s is both active and completed", q.ID))
		}
		if q.Progress < q.Target {
			errs = append(errs, fmt.Errorf("completed quest %s below target", q.ID))
		}
	}

	for _, a := range s.Achievements {
		if a.Unlocked && a.Progress < a.Target {
			errs = append(errs, fmt.Errorf("achievement %s unlocked below target", a.ID))
		}
	}
	for _, st := range s.Streaks {
		if st.LongestStreak < st.CurrentStreak {
			errs = append(errs, fmt.Errorf("streak %s/%s longest %d < current %d",
				st.Type, st.ReferenceID, st.LongestStreak, st.CurrentStreak))
		}
	}

	unread := 0
	for _, n := range s.Notifications {
		if !n.Read {
			unread++
		}
	}
	if s.UnreadCount != unread {
		errs = append(errs, fmt.Errorf("unread count %d, list has %d", s.UnreadCount, unread))
	}
	return errors.Join(errs...)
}
