package engagement_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/vitalquest/vitalquest/internal/app/engagement"
	"github.com/vitalquest/vitalquest/internal/domain"
	"github.com/vitalquest/vitalquest/internal/infra/sqlite"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func testDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("sqlite.Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestEngine(t *testing.T, db *sqlite.DB, clock *fakeClock) *engagement.Engine {
	t.Helper()
	e, err := engagement.NewEngine(book, engagement.WithStore(db), engagement.WithClock(clock.Now))
	if err != nil {
		t.Fatalf("NewEngine() error: %v", err)
	}
	return e
}

// ═══════════════════════════════════════════════════════════════════════════
// Preconditions
// ═══════════════════════════════════════════════════════════════════════════

func TestEngine_RequiresUser(t *testing.T) {
	e := newTestEngine(t, testDB(t), &fakeClock{day0})

	if _, err := e.LogSteps(1000); !errors.Is(err, domain.ErrNoUser) {
		t.Errorf("LogSteps() error = %v, want ErrNoUser", err)
	}
	if err := e.CompleteQuest("x"); !errors.Is(err, domain.ErrNoUser) {
		t.Errorf("CompleteQuest() error = %v, want ErrNoUser", err)
	}
	if _, err := e.User(); !errors.Is(err, domain.ErrNoUser) {
		t.Errorf("User() error = %v, want ErrNoUser", err)
	}
}

func TestEngine_InitializeOnce(t *testing.T) {
	e := newTestEngine(t, testDB(t), &fakeClock{day0})
	if err := e.Initialize("hero"); err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}
	if err := e.Initialize("again"); !errors.Is(err, domain.ErrUserExists) {
		t.Errorf("second Initialize() error = %v, want ErrUserExists", err)
	}
	u, err := e.User()
	if err != nil {
		t.Fatal(err)
	}
	if u.Username != "hero" {
		t.Errorf("username = %q", u.Username)
	}
}

func TestEngine_LogInvalid(t *testing.T) {
	e := newTestEngine(t, testDB(t), &fakeClock{day0})
	e.Initialize("hero")

	if _, err := e.LogSteps(-10); !errors.Is(err, domain.ErrInvalidActivity) {
		t.Errorf("LogSteps(-10) error = %v, want ErrInvalidActivity", err)
	}
	rec, err := e.LogWater(1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.LogActivity(rec); !errors.Is(err, domain.ErrInvalidActivity) {
		t.Errorf("duplicate id error = %v, want ErrInvalidActivity", err)
	}
}

func TestEngine_LogOutOfRange(t *testing.T) {
	db := testDB(t)
	e := newTestEngine(t, db, &fakeClock{day0})
	e.Initialize("hero")
	if _, err := e.LogSteps(10000); err != nil {
		t.Fatal(err)
	}
	before, _ := e.User()

	for _, v := range []float64{1e300, math.NaN(), math.Inf(1), math.Inf(-1)} {
		if _, err := e.LogSteps(v); !errors.Is(err, domain.ErrInvalidActivity) {
			t.Errorf("LogSteps(%v) error = %v, want ErrInvalidActivity", v, err)
		}
	}
	after, _ := e.User()
	if after.Character != before.Character {
		t.Errorf("character changed: %+v -> %+v", before.Character, after.Character)
	}

	// The store still accepts saves after the rejected logs.
	if _, err := e.LogWater(1); err != nil {
		t.Fatalf("LogWater() after rejected logs error: %v", err)
	}
	reopened := newTestEngine(t, db, &fakeClock{day0})
	sum, _ := reopened.DailySummary(day0)
	if sum.Steps != 10000 || sum.WaterGlasses != 1 {
		t.Errorf("stored summary = %+v, want 10000 steps and 1 glass", sum)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Flows
// ═══════════════════════════════════════════════════════════════════════════

func TestEngine_LogStepsCompletesDailyQuest(t *testing.T) {
	e := newTestEngine(t, testDB(t), &fakeClock{day0})
	e.Initialize("hero")

	rec, err := e.LogSteps(10000)
	if err != nil {
		t.Fatalf("LogSteps() error: %v", err)
	}
	if rec.ID == "" || !rec.Date.Equal(day0) || rec.Source != domain.SourceManual {
		t.Errorf("record = %+v", rec)
	}

	var done bool
	for _, q := range e.CompletedQuests() {
		if q.Title == "Daily Steps Goal" {
			done = true
		}
	}
	if !done {
		t.Error("Daily Steps Goal should be completed")
	}
	sum, ok := e.DailySummary(day0)
	if !ok || sum.Steps != 10000 || sum.QuestsCompleted != 1 {
		t.Errorf("summary = %+v (ok=%v)", sum, ok)
	}
	if n := len(e.TodayActivities()); n != 1 {
		t.Errorf("today = %d records, want 1", n)
	}
}

func TestEngine_PersistsAcrossRestart(t *testing.T) {
	db := testDB(t)
	clock := &fakeClock{day0}
	e := newTestEngine(t, db, clock)
	e.Initialize("hero")
	e.LogSteps(10000)
	e.LogExercise(35, domain.ExerciseDetails{HeartRate: 140})
	want := e.State()

	reopened := newTestEngine(t, db, clock)
	got := reopened.State()

	if got.User == nil || got.User.Character != want.User.Character {
		t.Fatalf("character = %+v, want %+v", got.User, want.User.Character)
	}
	if len(got.CompletedQuests) != len(want.CompletedQuests) {
		t.Errorf("completed = %d, want %d", len(got.CompletedQuests), len(want.CompletedQuests))
	}
	if len(got.Activities) != 2 {
		t.Errorf("activities = %d, want 2", len(got.Activities))
	}
	if got.UnreadCount != want.UnreadCount {
		t.Errorf("unread = %d, want %d", got.UnreadCount, want.UnreadCount)
	}
	sum, _ := reopened.DailySummary(day0)
	if sum.ExerciseMinutes != 35 {
		t.Errorf("exercise minutes = %v, want 35", sum.ExerciseMinutes)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Shared Store
// ═══════════════════════════════════════════════════════════════════════════

// racingStore runs beforeSave once, ahead of the next save, so another
// writer can land in between.
type racingStore struct {
	*sqlite.DB
	beforeSave func()
}

func (s *racingStore) SaveState(st domain.GameState, expected int64) (int64, error) {
	if f := s.beforeSave; f != nil {
		s.beforeSave = nil
		f()
	}
	return s.DB.SaveState(st, expected)
}

func TestEngine_SharedStoreKeepsOtherWrites(t *testing.T) {
	db := testDB(t)
	clock := &fakeClock{day0}
	server := newTestEngine(t, db, clock)
	if err := server.Initialize("hero"); err != nil {
		t.Fatal(err)
	}

	cli := newTestEngine(t, db, clock)
	if _, err := cli.LogWater(3); err != nil {
		t.Fatalf("LogWater() error: %v", err)
	}

	clock.t = day0.Add(25 * time.Hour)
	if _, err := server.Sweep(); err != nil {
		t.Fatalf("Sweep() error: %v", err)
	}
	if err := server.AddGold(5); err != nil {
		t.Fatalf("AddGold() error: %v", err)
	}

	reopened := newTestEngine(t, db, clock)
	got := reopened.State()
	if len(got.Activities) != 1 || got.Activities[0].Type != domain.ActivityWater {
		t.Fatalf("activities = %+v, want the water log", got.Activities)
	}
	if n, _ := db.ActivityCount(); n != 1 {
		t.Errorf("stored records = %d, want 1", n)
	}
	if sum, ok := reopened.DailySummary(day0); !ok || sum.WaterGlasses != 3 {
		t.Errorf("day0 summary = %+v, %v", sum, ok)
	}
	if acts := server.Activities(day0, day0.Add(24*time.Hour)); len(acts) != 1 {
		t.Errorf("server sees %d activities, want 1", len(acts))
	}
	if cliUser, _ := cli.User(); cliUser.Character.Gold != got.User.Character.Gold {
		t.Errorf("cli gold = %d, stored gold = %d", cliUser.Character.Gold, got.User.Character.Gold)
	}
}

func TestEngine_RetriesAfterConcurrentSave(t *testing.T) {
	db := testDB(t)
	clock := &fakeClock{day0}
	store := &racingStore{DB: db}
	server, err := engagement.NewEngine(book, engagement.WithStore(store), engagement.WithClock(clock.Now))
	if err != nil {
		t.Fatal(err)
	}
	if err := server.Initialize("hero"); err != nil {
		t.Fatal(err)
	}

	cli := newTestEngine(t, db, clock)
	store.beforeSave = func() {
		if _, err := cli.LogWater(2); err != nil {
			t.Errorf("concurrent LogWater() error: %v", err)
		}
	}
	if _, err := server.LogSteps(4000); err != nil {
		t.Fatalf("LogSteps() error: %v", err)
	}

	got := newTestEngine(t, db, clock).State()
	if len(got.Activities) != 2 {
		t.Fatalf("activities = %d, want both writes", len(got.Activities))
	}
	sum := got.DailySummaries[book.DayKey(day0)]
	if sum.Steps != 4000 || sum.WaterGlasses != 2 {
		t.Errorf("summary = %+v, want 4000 steps and 2 glasses", sum)
	}
	rev, _ := db.StateRevision()
	if rev != 3 {
		t.Errorf("revision = %d, want 3", rev)
	}
}

func TestEngine_Persist(t *testing.T) {
	db := testDB(t)
	clock := &fakeClock{day0}
	server := newTestEngine(t, db, clock)
	server.Initialize("hero")

	before, _ := db.StateRevision()
	if err := server.Persist(); err != nil {
		t.Fatalf("Persist() error: %v", err)
	}
	if rev, _ := db.StateRevision(); rev != before+1 {
		t.Errorf("revision = %d, want %d", rev, before+1)
	}

	cli := newTestEngine(t, db, clock)
	cli.LogWater(4)
	stored, _ := db.StateRevision()

	if err := server.Persist(); err != nil {
		t.Fatalf("Persist() after other write error: %v", err)
	}
	if rev, _ := db.StateRevision(); rev != stored {
		t.Errorf("revision = %d, want %d (no save over a newer state)", rev, stored)
	}
	if acts := server.TodayActivities(); len(acts) != 1 {
		t.Errorf("server activities = %d, want 1 after reload", len(acts))
	}
	if n, _ := db.ActivityCount(); n != 1 {
		t.Errorf("stored records = %d, want 1", n)
	}
}

func TestEngine_CompleteQuest(t *testing.T) {
	e := newTestEngine(t, testDB(t), &fakeClock{day0})
	e.Initialize("hero")

	if err := e.CompleteQuest("nope"); !errors.Is(err, domain.ErrQuestNotFound) {
		t.Errorf("unknown quest error = %v, want ErrQuestNotFound", err)
	}

	id := e.ActiveQuests()[0].ID
	if err := e.CompleteQuest(id); err != nil {
		t.Fatalf("CompleteQuest() error: %v", err)
	}
	u, _ := e.User()
	if err := e.CompleteQuest(id); err != nil {
		t.Errorf("repeat CompleteQuest() error = %v, want nil", err)
	}
	again, _ := e.User()
	if again.Character != u.Character {
		t.Error("repeat completion paid again")
	}
}

func TestEngine_CustomQuest(t *testing.T) {
	e := newTestEngine(t, testDB(t), &fakeClock{day0})
	e.Initialize("hero")

	if _, err := e.CreateCustomQuest(engagement.CustomQuestSpec{Title: ""}); !errors.Is(err, domain.ErrInvalidQuest) {
		t.Errorf("empty title error = %v, want ErrInvalidQuest", err)
	}
	q, err := e.CreateCustomQuest(engagement.CustomQuestSpec{
		Title: "Sleep early", Category: domain.CategorySleep, Target: 8, Difficulty: domain.DifficultyHard,
	})
	if err != nil {
		t.Fatalf("CreateCustomQuest() error: %v", err)
	}
	if _, err := e.LogSleep(8, domain.SleepGood); err != nil {
		t.Fatal(err)
	}
	var done bool
	for _, c := range e.CompletedQuests() {
		if c.ID == q.ID {
			done = true
		}
	}
	if !done {
		t.Error("custom sleep quest should complete from its category metric")
	}
}

func TestEngine_StreakErrors(t *testing.T) {
	e := newTestEngine(t, testDB(t), &fakeClock{day0})
	e.Initialize("hero")

	if err := e.BuyStreakFreeze(domain.StreakOverall, ""); !errors.Is(err, domain.ErrStreakNotFound) {
		t.Errorf("error = %v, want ErrStreakNotFound", err)
	}
	if err := e.BreakStreak(domain.StreakOverall, ""); !errors.Is(err, domain.ErrStreakNotFound) {
		t.Errorf("error = %v, want ErrStreakNotFound", err)
	}
	if err := e.UpdateStreak(domain.StreakOverall, ""); err != nil {
		t.Fatal(err)
	}
	if err := e.BuyStreakFreeze(domain.StreakOverall, ""); !errors.Is(err, domain.ErrInsufficientGold) {
		t.Errorf("error = %v, want ErrInsufficientGold", err)
	}
	e.AddGold(60)
	if err := e.BuyStreakFreeze(domain.StreakOverall, ""); err != nil {
		t.Errorf("BuyStreakFreeze() error: %v", err)
	}
	if st := e.Streaks(); len(st) != 1 || st[0].FreezesAvailable != 1 {
		t.Errorf("streaks = %+v", st)
	}
}

func TestEngine_NegativeAmounts(t *testing.T) {
	e := newTestEngine(t, testDB(t), &fakeClock{day0})
	e.Initialize("hero")
	if err := e.AddXP(-1); err == nil {
		t.Error("AddXP(-1) should fail")
	}
	if err := e.AddGold(-1); err == nil {
		t.Error("AddGold(-1) should fail")
	}
}

func TestEngine_ImportCount(t *testing.T) {
	e := newTestEngine(t, testDB(t), &fakeClock{day0})
	e.Initialize("hero")

	recs := []domain.ActivityRecord{
		{ID: "ext-1", Type: domain.ActivitySteps, Value: 3000, Date: day0.Add(-time.Hour)},
		{ID: "ext-2", Type: domain.ActivitySteps, Value: -4, Date: day0},
	}
	n, err := e.ImportActivities(recs)
	if err != nil || n != 1 {
		t.Errorf("ImportActivities() = %d, %v; want 1, nil", n, err)
	}
	n, _ = e.ImportActivities(recs)
	if n != 0 {
		t.Errorf("re-import = %d, want 0", n)
	}
}

func TestEngine_UpdateDeleteActivity(t *testing.T) {
	e := newTestEngine(t, testDB(t), &fakeClock{day0})
	e.Initialize("hero")

	rec, _ := e.LogWater(3)
	rec.Value = 5
	if err := e.UpdateActivity(rec); err != nil {
		t.Fatalf("UpdateActivity() error: %v", err)
	}
	if sum, _ := e.DailySummary(day0); sum.WaterGlasses != 5 {
		t.Errorf("water = %v, want 5", sum.WaterGlasses)
	}
	if err := e.DeleteActivity(rec.ID); err != nil {
		t.Fatalf("DeleteActivity() error: %v", err)
	}
	if err := e.DeleteActivity(rec.ID); !errors.Is(err, domain.ErrActivityNotFound) {
		t.Errorf("second delete error = %v, want ErrActivityNotFound", err)
	}
	if sum, _ := e.DailySummary(day0); sum.WaterGlasses != 0 {
		t.Errorf("water = %v, want 0", sum.WaterGlasses)
	}
}

func TestEngine_Notifications(t *testing.T) {
	e := newTestEngine(t, testDB(t), &fakeClock{day0})
	e.Initialize("hero")
	e.AddXP(100)

	list, unread := e.Notifications()
	if len(list) == 0 || unread != len(list) {
		t.Fatalf("notifications = %d, unread = %d", len(list), unread)
	}
	e.MarkNotificationRead(list[0].ID)
	if _, unread := e.Notifications(); unread != len(list)-1 {
		t.Errorf("unread = %d, want %d", unread, len(list)-1)
	}
	e.MarkAllNotificationsRead()
	if _, unread := e.Notifications(); unread != 0 {
		t.Errorf("unread = %d, want 0", unread)
	}
	e.ClearNotifications()
	if list, _ := e.Notifications(); len(list) != 0 {
		t.Errorf("notifications = %d after clear", len(list))
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Maintenance
// ═══════════════════════════════════════════════════════════════════════════

func TestEngine_SweepExpiresAndRegenerates(t *testing.T) {
	clock := &fakeClock{day0}
	e := newTestEngine(t, testDB(t), clock)
	e.Initialize("hero")

	clock.t = time.Date(2025, 7, 2, 1, 0, 0, 0, time.UTC)
	rep, err := e.Sweep()
	if err != nil {
		t.Fatalf("Sweep() error: %v", err)
	}
	if rep.QuestsExpired != 5 || rep.QuestsAdded != 5 {
		t.Errorf("report = %+v, want 5 expired and 5 added", rep)
	}
	u, _ := e.User()
	if u.Character.HP != 25 {
		t.Errorf("HP = %d, want 25", u.Character.HP)
	}
	if n := len(e.ActiveQuests()); n != 8 {
		t.Errorf("active = %d, want 8", n)
	}

	again, _ := e.Sweep()
	if again.QuestsExpired != 0 || again.QuestsAdded != 0 {
		t.Errorf("second sweep = %+v, want nothing to do", again)
	}
}

func TestEngine_SweepBreaksStreak(t *testing.T) {
	clock := &fakeClock{day0}
	e := newTestEngine(t, testDB(t), clock)
	e.Initialize("hero")
	e.UpdateStreak(domain.StreakOverall, "")

	clock.t = day0.AddDate(0, 0, 3)
	rep, err := e.Sweep()
	if err != nil {
		t.Fatal(err)
	}
	if rep.StreaksBroken != 1 {
		t.Errorf("StreaksBroken = %d, want 1", rep.StreaksBroken)
	}
}

func TestEngine_SweepWithoutUser(t *testing.T) {
	e := newTestEngine(t, testDB(t), &fakeClock{day0})
	if _, err := e.Sweep(); err != nil {
		t.Errorf("Sweep() without a user error = %v, want nil", err)
	}
}

func TestEngine_Reset(t *testing.T) {
	e := newTestEngine(t, testDB(t), &fakeClock{day0})
	e.Initialize("hero")
	e.LogSteps(12000)

	if err := e.Reset(); err != nil {
		t.Fatal(err)
	}
	s := e.State()
	if s.User.Character.TotalXP != 0 || len(s.Activities) != 0 || len(s.CompletedQuests) != 0 {
		t.Errorf("state after reset: xp=%d activities=%d completed=%d",
			s.User.Character.TotalXP, len(s.Activities), len(s.CompletedQuests))
	}
}
