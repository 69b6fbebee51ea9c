package engagement

import (
	"fmt"
	"time"

	"github.com/vitalquest/vitalquest/internal/domain"
)

// ─── Level Curve ────────────────────────────────────────────────────────────
// A fixed, strictly increasing threshold table. Level N needs
// XPThresholds[N-1] total XP. The last entry is the terminal level; XP past
// it keeps accumulating in TotalXP.

// XPForLevel returns the cumulative XP required to reach a given level.
func (r Rulebook) XPForLevel(level int) int64 {
	t := r.rules.Levels.XPThresholds
	if level <= 1 {
		return 0
	}
	if level > len(t) {
		level = len(t)
	}
	return t[level-1]
}

// LevelForXP returns the last level whose threshold is at or below xp.
func (r Rulebook) LevelForXP(xp int64) int {
	level := 1
	for i, threshold := range r.rules.Levels.XPThresholds {
		if xp >= threshold {
			level = i + 1
		}
	}
	return level
}

// MaxHPForLevel returns the HP cap at a given level.
func (r Rulebook) MaxHPForLevel(level int) int {
	return r.rules.HP.BaseMaxHP + level*r.rules.Levels.MaxHPPerLevel
}

// XPForNextLevel returns the cumulative XP the next level needs, or the
// terminal threshold at max level.
func (r Rulebook) XPForNextLevel(c domain.Character) int64 {
	return r.XPForLevel(c.Level + 1)
}

// XPToNextLevel returns XP remaining until the next level (0 at max level).
func (r Rulebook) XPToNextLevel(c domain.Character) int64 {
	if c.Level >= r.rules.Levels.MaxLevel() {
		return 0
	}
	remaining := r.XPForNextLevel(c) - c.TotalXP
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// LevelProgressPct returns progress toward the next level (0.0–100.0).
func (r Rulebook) LevelProgressPct(c domain.Character) float64 {
	if c.Level >= r.rules.Levels.MaxLevel() {
		return 100.0
	}
	span := r.XPForNextLevel(c) - r.XPForLevel(c.Level)
	if span <= 0 {
		return 100.0
	}
	progress := float64(c.CurrentXP) / float64(span) * 100.0
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	return progress
}

// ─── Character Transitions ──────────────────────────────────────────────────

// AddXP grants XP and applies level-up effects. Negative or zero amounts
// are a no-op.
func (r Rulebook) AddXP(s domain.GameState, amount int64, now time.Time) domain.GameState {
	if s.User == nil || amount <= 0 {
		return s
	}
	next := s.Clone()
	r.grantXP(&next, amount, now)
	return next
}

// AddGold adds gold. The sign is the caller's responsibility.
func (r Rulebook) AddGold(s domain.GameState, amount int64, now time.Time) domain.GameState {
	if s.User == nil || amount == 0 {
		return s
	}
	next := s.Clone()
	r.grantGold(&next, amount, now)
	return next
}

// TakeDamage lowers HP, stopping at 0.
func (r Rulebook) TakeDamage(s domain.GameState, amount int) domain.GameState {
	if s.User == nil || amount <= 0 {
		return s
	}
	next := s.Clone()
	damage(&next.User.Character, amount)
	return next
}

// Heal raises HP, stopping at MaxHP.
func (r Rulebook) Heal(s domain.GameState, amount int) domain.GameState {
	if s.User == nil || amount <= 0 {
		return s
	}
	next := s.Clone()
	heal(&next.User.Character, amount)
	return next
}

// grantXP is the one place TotalXP changes. Level, CurrentXP, and the
// level-up effects are derived together. Reports whether a level was gained.
func (r Rulebook) grantXP(s *domain.GameState, amount int64, now time.Time) bool {
	c := &s.User.Character
	oldLevel := c.Level
	c.TotalXP += amount
	c.Level = r.LevelForXP(c.TotalXP)
	c.CurrentXP = c.TotalXP - r.XPForLevel(c.Level)
	r.editSummary(s, now, func(d *domain.DailySummary) { d.XPEarned += amount })

	if c.Level <= oldLevel {
		return false
	}
	gained := int64(c.Level - oldLevel)
	r.grantGold(s, r.rules.Gold.LevelUp*gained, now)
	if r.rules.HP.FullHealOnLevelUp {
		c.MaxHP = r.MaxHPForLevel(c.Level)
		c.HP = c.MaxHP
	}
	r.notify(s, domain.NotifyLevelUp, "Level Up!",
		fmt.Sprintf("Congratulations! You reached level %d!", c.Level), "⬆️", now)
	return true
}

func (r Rulebook) grantGold(s *domain.GameState, amount int64, now time.Time) {
	s.User.Character.Gold += amount
	if amount > 0 {
		r.editSummary(s, now, func(d *domain.DailySummary) { d.GoldEarned += amount })
	}
}

func damage(c *domain.Character, amount int) {
	c.HP -= amount
	if c.HP < 0 {
		c.HP = 0
	}
}

func heal(c *domain.Character, amount int) {
	c.HP += amount
	if c.HP > c.MaxHP {
		c.HP = c.MaxHP
	}
}
