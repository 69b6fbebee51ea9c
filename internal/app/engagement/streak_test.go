package engagement_test

import (
	"testing"

	"github.com/vitalquest/vitalquest/internal/domain"
)

func overall(t *testing.T, s domain.GameState) domain.Streak {
	t.Helper()
	st, ok := book.StreakFor(s, domain.StreakOverall, "")
	if !ok {
		t.Fatal("overall streak missing")
	}
	return st
}

func TestUpdateStreak_Creates(t *testing.T) {
	s := barePlayer(t)
	s = book.UpdateStreak(s, domain.StreakOverall, "", day0)

	st := overall(t, s)
	if st.CurrentStreak != 1 || st.LongestStreak != 1 || st.FreezesAvailable != 0 {
		t.Errorf("streak = %+v", st)
	}
	if s.User.Stats.CurrentStreak != 1 || s.User.Stats.LongestStreak != 1 {
		t.Errorf("stats = %+v", s.User.Stats)
	}
}

func TestUpdateStreak_OncePerDay(t *testing.T) {
	s := barePlayer(t)
	s = book.UpdateStreak(s, domain.StreakOverall, "", day0)
	s = book.UpdateStreak(s, domain.StreakOverall, "", day0.Add(3))
	if got := overall(t, s).CurrentStreak; got != 1 {
		t.Errorf("current = %d, want 1", got)
	}
	s = book.UpdateStreak(s, domain.StreakOverall, "", day0.AddDate(0, 0, 1))
	if got := overall(t, s).CurrentStreak; got != 2 {
		t.Errorf("current = %d, want 2", got)
	}
}

func TestUpdateStreak_KeyedByReference(t *testing.T) {
	s := barePlayer(t)
	s = book.UpdateStreak(s, domain.StreakActivity, "steps", day0)
	s = book.UpdateStreak(s, domain.StreakActivity, "water", day0)
	if len(s.Streaks) != 2 {
		t.Errorf("streaks = %d, want one per reference", len(s.Streaks))
	}
	if s.User.Stats.CurrentStreak != 0 {
		t.Error("activity streaks must not touch the overall mirror")
	}
}

func TestUpdateThenBreak(t *testing.T) {
	s := barePlayer(t)
	s = book.UpdateStreak(s, domain.StreakOverall, "", day0)
	s = book.UpdateStreak(s, domain.StreakOverall, "", day0.AddDate(0, 0, 1))
	longest := overall(t, s).LongestStreak

	s = book.BreakStreak(s, domain.StreakOverall, "")
	st := overall(t, s)
	if st.CurrentStreak != 0 {
		t.Errorf("current = %d, want 0", st.CurrentStreak)
	}
	if st.LongestStreak != longest || longest != 2 {
		t.Errorf("longest = %d, want %d", st.LongestStreak, longest)
	}
	if s.User.Stats.CurrentStreak != 0 || s.User.Stats.LongestStreak != 2 {
		t.Errorf("stats = %+v", s.User.Stats)
	}
}

func TestBreakStreak_Unknown(t *testing.T) {
	s := barePlayer(t)
	if got := book.BreakStreak(s, domain.StreakQuest, "daily:steps"); len(got.Streaks) != 0 {
		t.Error("breaking an unknown streak should be a no-op")
	}
}

func TestStreakMilestone(t *testing.T) {
	s := barePlayer(t)
	for i := range 3 {
		s = book.UpdateStreak(s, domain.StreakOverall, "", day0.AddDate(0, 0, i))
	}
	if got := s.User.Character.Gold; got != 75 {
		t.Errorf("gold = %d, want the 75 milestone bonus", got)
	}
	if s.Notifications[0].Type != domain.NotifyStreakAlert {
		t.Errorf("newest notification = %s, want streak_alert", s.Notifications[0].Type)
	}
	sum, _ := book.DailySummary(s, day0.AddDate(0, 0, 2))
	if sum.GoldEarned != 75 {
		t.Errorf("GoldEarned = %d, want 75", sum.GoldEarned)
	}
}

func TestBuyStreakFreeze(t *testing.T) {
	s := barePlayer(t)
	s = book.UpdateStreak(s, domain.StreakOverall, "", day0)

	if got := book.BuyStreakFreeze(s, domain.StreakOverall, ""); overall(t, got).FreezesAvailable != 0 {
		t.Error("freeze bought without gold")
	}

	s = book.AddGold(s, 100, day0)
	s = book.BuyStreakFreeze(s, domain.StreakOverall, "")
	if got := overall(t, s).FreezesAvailable; got != 1 {
		t.Errorf("freezes = %d, want 1", got)
	}
	if s.User.Character.Gold != 50 {
		t.Errorf("gold = %d, want 50", s.User.Character.Gold)
	}
}

func TestMissDay(t *testing.T) {
	s := barePlayer(t)
	s = book.UpdateStreak(s, domain.StreakOverall, "", day0)
	s = book.AddGold(s, 50, day0)
	s = book.BuyStreakFreeze(s, domain.StreakOverall, "")

	missed := day0.AddDate(0, 0, 1)
	s = book.MissDay(s, domain.StreakOverall, "", missed)
	st := overall(t, s)
	if st.CurrentStreak != 1 || st.FreezesAvailable != 0 {
		t.Errorf("after frozen miss: %+v", st)
	}

	s = book.MissDay(s, domain.StreakOverall, "", missed.AddDate(0, 0, 1))
	if got := overall(t, s).CurrentStreak; got != 0 {
		t.Errorf("current = %d, want 0 without a freeze", got)
	}
}

func TestExpireStreaks(t *testing.T) {
	s := barePlayer(t)
	s = book.UpdateStreak(s, domain.StreakOverall, "", day0)
	s = book.UpdateStreak(s, domain.StreakOverall, "", day0.AddDate(0, 0, 1))
	s = book.AddGold(s, 50, day0)
	s = book.BuyStreakFreeze(s, domain.StreakOverall, "")

	// Yesterday was the last completion: nothing to do.
	s = book.ExpireStreaks(s, day0.AddDate(0, 0, 2))
	if st := overall(t, s); st.CurrentStreak != 2 || st.FreezesAvailable != 1 {
		t.Fatalf("no missed day yet: %+v", st)
	}

	// One missed day, covered by the freeze.
	s = book.ExpireStreaks(s, day0.AddDate(0, 0, 3))
	if st := overall(t, s); st.CurrentStreak != 2 || st.FreezesAvailable != 0 {
		t.Fatalf("frozen day: %+v", st)
	}
	// Running the sweep again on the same day must not change anything.
	again := book.ExpireStreaks(s, day0.AddDate(0, 0, 3))
	if overall(t, again) != overall(t, s) {
		t.Error("repeated sweep changed the streak")
	}

	// Two more missed days with no freeze left.
	s = book.ExpireStreaks(s, day0.AddDate(0, 0, 5))
	st := overall(t, s)
	if st.CurrentStreak != 0 || st.LongestStreak != 2 {
		t.Errorf("after break: %+v", st)
	}
	if s.User.Stats.CurrentStreak != 0 {
		t.Errorf("stats.CurrentStreak = %d, want 0", s.User.Stats.CurrentStreak)
	}
}

func TestStreaks_NoUser(t *testing.T) {
	var s domain.GameState
	s = book.UpdateStreak(s, domain.StreakOverall, "", day0)
	if len(s.Streaks) != 0 {
		t.Error("streak created without a user")
	}
}

func TestLongestNeverBelowCurrent(t *testing.T) {
	s := barePlayer(t)
	days := []int{0, 1, 2, 5, 6, 7, 8, 12}
	for i, d := range days {
		now := day0.AddDate(0, 0, d)
		s = book.ExpireStreaks(s, now)
		s = book.UpdateStreak(s, domain.StreakOverall, "", now)
		st := overall(t, s)
		if st.LongestStreak < st.CurrentStreak {
			t.Fatalf("step %d: longest %d < current %d", i, st.LongestStreak, st.CurrentStreak)
		}
	}
	if got := overall(t, s).LongestStreak; got != 4 {
		t.Errorf("longest = %d, want 4 (days 5-8)", got)
	}
}
