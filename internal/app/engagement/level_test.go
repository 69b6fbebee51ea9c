package engagement_test

import (
	"testing"

	"github.com/vitalquest/vitalquest/internal/domain"
)

func TestLevelForXP(t *testing.T) {
	tests := []struct {
		xp   int64
		want int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{249, 2},
		{250, 3},
		{850, 5},
		{42099, 29},
		{42100, 30},
		{1_000_000, 30},
	}
	for _, tt := range tests {
		if got := book.LevelForXP(tt.xp); got != tt.want {
			t.Errorf("LevelForXP(%d) = %d, want %d", tt.xp, got, tt.want)
		}
	}
}

func TestLevelMonotonic(t *testing.T) {
	thresholds := domain.DefaultGameRules().Levels.XPThresholds
	prev := 0
	for xp := int64(0); xp <= 50000; xp += 37 {
		level := book.LevelForXP(xp)
		if level < prev {
			t.Fatalf("level dropped from %d to %d at xp %d", prev, level, xp)
		}
		want := 0
		for i, th := range thresholds {
			if th <= xp {
				want = i + 1
			}
		}
		if level != want {
			t.Fatalf("LevelForXP(%d) = %d, want %d", xp, level, want)
		}
		prev = level
	}
}

func TestAddXP_LevelUp(t *testing.T) {
	s := barePlayer(t)
	s = book.AddXP(s, 100, day0)
	c := s.User.Character

	if c.Level != 2 {
		t.Errorf("level = %d, want 2", c.Level)
	}
	if c.CurrentXP != 0 {
		t.Errorf("currentXP = %d, want 0", c.CurrentXP)
	}
	if c.Gold != 100 {
		t.Errorf("gold = %d, want one level-up bonus (100)", c.Gold)
	}
	if c.MaxHP != 120 || c.HP != 120 {
		t.Errorf("HP = %d/%d, want 120/120", c.HP, c.MaxHP)
	}
	if n := countNotifications(s, domain.NotifyLevelUp); n != 1 {
		t.Errorf("level_up notifications = %d, want 1", n)
	}
	if s.UnreadCount != 1 {
		t.Errorf("unread = %d, want 1", s.UnreadCount)
	}
}

func TestAddXP_MultiLevelJumpNotifiesOnce(t *testing.T) {
	s := barePlayer(t)
	s = book.AddXP(s, 500, day0)
	c := s.User.Character

	if c.Level != 4 {
		t.Errorf("level = %d, want 4", c.Level)
	}
	if c.Gold != 300 {
		t.Errorf("gold = %d, want 3 level-up bonuses (300)", c.Gold)
	}
	if c.MaxHP != 140 {
		t.Errorf("maxHP = %d, want 140", c.MaxHP)
	}
	if n := countNotifications(s, domain.NotifyLevelUp); n != 1 {
		t.Errorf("level_up notifications = %d, want exactly 1", n)
	}
}

func TestAddXP_NoLevelUpKeepsHP(t *testing.T) {
	s := barePlayer(t)
	s = book.TakeDamage(s, 30)
	s = book.AddXP(s, 40, day0)
	c := s.User.Character

	if c.Level != 1 || c.CurrentXP != 40 {
		t.Errorf("character = %+v, want level 1 with 40 XP", c)
	}
	if c.HP != 70 {
		t.Errorf("HP = %d, want 70", c.HP)
	}
	if len(s.Notifications) != 0 {
		t.Errorf("notifications = %d, want 0", len(s.Notifications))
	}
}

func TestAddXP_NoopCases(t *testing.T) {
	s := barePlayer(t)
	if got := book.AddXP(s, -50, day0); got.User.Character.TotalXP != 0 {
		t.Errorf("negative XP applied: %d", got.User.Character.TotalXP)
	}
	if got := book.AddXP(s, 0, day0); got.User.Character.TotalXP != 0 {
		t.Errorf("zero XP changed state: %d", got.User.Character.TotalXP)
	}

	empty := domain.GameState{}
	if got := book.AddXP(empty, 100, day0); got.User != nil {
		t.Error("AddXP without a user should be a no-op")
	}
}

func TestAddXP_MaxLevelClamp(t *testing.T) {
	s := barePlayer(t)
	s = book.AddXP(s, 50000, day0)
	c := s.User.Character

	if c.Level != 30 {
		t.Errorf("level = %d, want 30", c.Level)
	}
	if c.TotalXP != 50000 {
		t.Errorf("totalXP = %d, want 50000", c.TotalXP)
	}
	if c.CurrentXP != 50000-42100 {
		t.Errorf("currentXP = %d, want %d", c.CurrentXP, 50000-42100)
	}
	if got := book.XPToNextLevel(c); got != 0 {
		t.Errorf("XPToNextLevel at max = %d, want 0", got)
	}
	if got := book.LevelProgressPct(c); got != 100 {
		t.Errorf("LevelProgressPct at max = %v, want 100", got)
	}

	more := book.AddXP(s, 10000, day0)
	if more.User.Character.Level != 30 || more.User.Character.TotalXP != 60000 {
		t.Errorf("past max: %+v", more.User.Character)
	}
}

func TestLevelHelpers(t *testing.T) {
	s := barePlayer(t)
	s = book.AddXP(s, 150, day0)
	c := s.User.Character

	if got := book.XPForNextLevel(c); got != 250 {
		t.Errorf("XPForNextLevel = %d, want 250", got)
	}
	if got := book.XPToNextLevel(c); got != 100 {
		t.Errorf("XPToNextLevel = %d, want 100", got)
	}
	pct := book.LevelProgressPct(c)
	if pct < 33.3 || pct > 33.4 {
		t.Errorf("LevelProgressPct = %v, want ~33.33", pct)
	}
}

func TestHPClamping(t *testing.T) {
	s := barePlayer(t)
	ops := []struct {
		damage bool
		amount int
	}{
		{true, 30}, {false, 500}, {true, 1000}, {false, 5},
		{true, 1}, {true, 7}, {false, 99}, {true, 250},
	}
	for i, op := range ops {
		if op.damage {
			s = book.TakeDamage(s, op.amount)
		} else {
			s = book.Heal(s, op.amount)
		}
		c := s.User.Character
		if c.HP < 0 || c.HP > c.MaxHP {
			t.Fatalf("step %d: HP %d outside [0, %d]", i, c.HP, c.MaxHP)
		}
	}
	if s.User.Character.HP != 0 {
		t.Errorf("final HP = %d, want 0", s.User.Character.HP)
	}
}

func TestAddGold(t *testing.T) {
	s := barePlayer(t)
	s = book.AddGold(s, 40, day0)
	s = book.AddGold(s, 2, day0)
	if s.User.Character.Gold != 42 {
		t.Errorf("gold = %d, want 42", s.User.Character.Gold)
	}
}

func TestEarningsRecordedOnDailySummary(t *testing.T) {
	s := barePlayer(t)
	s = book.AddXP(s, 100, day0)

	sum, ok := book.DailySummary(s, day0)
	if !ok {
		t.Fatal("no summary for day0")
	}
	if sum.XPEarned != 100 {
		t.Errorf("XPEarned = %d, want 100", sum.XPEarned)
	}
	if sum.GoldEarned != 100 {
		t.Errorf("GoldEarned = %d, want 100 (level-up bonus)", sum.GoldEarned)
	}
}
