package engagement

import (
	"errors"
	"fmt"
	"log"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vitalquest/vitalquest/internal/domain"
	"github.com/vitalquest/vitalquest/internal/infra/metrics"
)

// Engine owns the single live GameState. Every mutating call runs one
// Rulebook transition under the lock, saves the result, then swaps it in.
// Where the rulebook silently ignores input, Engine reports why with a
// domain sentinel error so the API and CLI can answer properly.
//
// The store may be shared with other processes (the CLI next to a running
// server). The engine remembers the revision it loaded and reloads before
// reading or transitioning whenever the stored revision has moved.
type Engine struct {
	mu    sync.Mutex
	book  Rulebook
	state domain.GameState
	rev   int64
	store domain.StateStore
	now   func() time.Time
}

// maxCommitAttempts bounds how often a transition is re-run after losing
// a save race to another process.
const maxCommitAttempts = 3

// Option configures an Engine.
type Option func(*Engine)

// WithStore persists every committed transition to store.
func WithStore(store domain.StateStore) Option {
	return func(e *Engine) { e.store = store }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an engine, loading saved state when a store is set.
func NewEngine(book Rulebook, opts ...Option) (*Engine, error) {
	e := &Engine{book: book, state: NewGameState(), now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	if e.store != nil {
		s, rev, err := e.store.LoadState()
		if err != nil {
			return nil, fmt.Errorf("load state: %w", err)
		}
		e.adopt(s, rev)
	}
	e.publishGauges(e.state)
	return e, nil
}

func (e *Engine) adopt(s domain.GameState, rev int64) {
	if s.DailySummaries == nil {
		s.DailySummaries = make(map[string]domain.DailySummary)
	}
	e.state = s
	e.rev = rev
}

// syncLocked reloads the state when another process saved since the last
// load or save. Reports whether a reload happened. Callers hold e.mu.
func (e *Engine) syncLocked() bool {
	if e.store == nil {
		return false
	}
	rev, err := e.store.StateRevision()
	if err != nil {
		log.Printf("[engine] read revision: %v", err)
		return false
	}
	if rev == e.rev {
		return false
	}
	s, rev, err := e.store.LoadState()
	if err != nil {
		log.Printf("[engine] reload state: %v", err)
		return false
	}
	log.Printf("[engine] reloaded state at revision %d (had %d)", rev, e.rev)
	e.adopt(s, rev)
	e.publishGauges(e.state)
	return true
}

// Rulebook returns the rules the engine applies.
func (e *Engine) Rulebook() Rulebook { return e.book }

// Now returns the engine clock.
func (e *Engine) Now() time.Time { return e.now() }

// State returns a copy of the live state.
func (e *Engine) State() domain.GameState {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.syncLocked()
	return e.state.Clone()
}

// Persist writes the live state to the store under the lock. If another
// process saved in the meantime the stored state wins and is reloaded.
func (e *Engine) Persist() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.store == nil || e.syncLocked() {
		return nil
	}
	rev, err := e.store.SaveState(e.state, e.rev)
	if err != nil {
		metrics.StoreFailures.Inc()
		return fmt.Errorf("save state: %w", err)
	}
	e.rev = rev
	return nil
}

// ─── Commit ─────────────────────────────────────────────────────────────────

type transition func(s domain.GameState, now time.Time) (domain.GameState, error)

// commit runs fn against the live state, saves the result and swaps it in.
// A precondition error or a failed save leaves the state untouched. A
// transition that changes nothing is not saved. When another process saved
// first, the state is reloaded and fn runs again on the fresh copy.
func (e *Engine) commit(op string, fn transition) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	for attempt := 1; ; attempt++ {
		e.syncLocked()
		before := e.state
		next, err := fn(before, e.now())
		if err != nil {
			return err
		}
		next = collapseLevelUps(before, next)
		if reflect.DeepEqual(before, next) {
			return nil
		}

		if e.store != nil {
			rev, err := e.store.SaveState(next, e.rev)
			if errors.Is(err, domain.ErrStaleState) && attempt < maxCommitAttempts {
				log.Printf("[engine] %s raced another writer, retrying", op)
				continue
			}
			if err != nil {
				metrics.StoreFailures.Inc()
				log.Printf("[engine] save after %s failed: %v", op, err)
				return fmt.Errorf("save state: %w", err)
			}
			e.rev = rev
		}
		e.state = next
		e.observe(before, next)
		metrics.TransitionLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
		return nil
	}
}

// observe logs and counts what a transition changed.
func (e *Engine) observe(before, after domain.GameState) {
	if after.User == nil {
		e.publishGauges(after)
		return
	}
	var prev domain.User
	if before.User != nil {
		prev = *before.User
	}
	cur := after.User

	if prev.Character.Class != "" && cur.Character.Class != prev.Character.Class {
		log.Printf("[engine] class changed: %s -> %s", prev.Character.Class, cur.Character.Class)
	}
	if d := cur.Character.TotalXP - prev.Character.TotalXP; d > 0 {
		metrics.XPAwarded.Add(float64(d))
	}
	for _, n := range freshNotifications(before, after) {
		switch n.Type {
		case domain.NotifyLevelUp:
			metrics.LevelUps.Inc()
			log.Printf("[engine] level up: %s is now level %d", cur.Username, cur.Character.Level)
		case domain.NotifyReminder:
			metrics.QuestsExpired.Inc()
			log.Printf("[engine] quest expired: %s", n.Message)
		}
	}
	for _, q := range after.CompletedQuests[min(len(before.CompletedQuests), len(after.CompletedQuests)):] {
		metrics.QuestsCompleted.WithLabelValues(string(q.Type)).Inc()
		log.Printf("[engine] quest completed: %s (+%d XP, +%d gold)", q.ID, q.XPReward, q.GoldReward)
	}
	for _, a := range after.Achievements {
		if !a.Unlocked {
			continue
		}
		if i := before.AchievementIndex(a.ID); i >= 0 && before.Achievements[i].Unlocked {
			continue
		}
		metrics.AchievementsUnlocked.WithLabelValues(string(a.Rarity)).Inc()
		log.Printf("[engine] achievement unlocked: %s", a.ID)
	}
	if d := len(after.Activities) - len(before.Activities); d > 0 {
		for _, a := range after.Activities[len(before.Activities):] {
			metrics.ActivitiesLogged.WithLabelValues(string(a.Type), string(a.Source)).Inc()
		}
	}
	if d := sumGoldEarned(after) - sumGoldEarned(before); d > 0 {
		metrics.GoldAwarded.Add(float64(d))
	}
	e.publishGauges(after)
}

func (e *Engine) publishGauges(s domain.GameState) {
	metrics.ActiveQuests.Set(float64(len(s.ActiveQuests)))
	if s.User == nil {
		return
	}
	c := s.User.Character
	metrics.CharacterLevel.Set(float64(c.Level))
	metrics.CharacterHP.Set(float64(c.HP))
	metrics.GoldBalance.Set(float64(c.Gold))
	metrics.OverallStreak.Set(float64(s.User.Stats.CurrentStreak))
}

// freshNotifications returns the notifications a transition prepended.
func freshNotifications(before, after domain.GameState) []domain.Notification {
	k := len(after.Notifications) - len(before.Notifications)
	if k <= 0 {
		return nil
	}
	return after.Notifications[:k]
}

func sumGoldEarned(s domain.GameState) int64 {
	var total int64
	for _, d := range s.DailySummaries {
		total += d.GoldEarned
	}
	return total
}

func requireUser(s domain.GameState) error {
	if s.User == nil {
		return domain.ErrNoUser
	}
	return nil
}

// ─── Profile ────────────────────────────────────────────────────────────────

// Initialize creates the player profile.
func (e *Engine) Initialize(username string) error {
	return e.commit("initialize", func(s domain.GameState, now time.Time) (domain.GameState, error) {
		if s.User != nil {
			return s, domain.ErrUserExists
		}
		next := e.book.InitializeUser(s, username, now)
		log.Printf("[engine] initialized player %q", next.User.Username)
		return next, nil
	})
}

// Reset wipes all progress for the current player.
func (e *Engine) Reset() error {
	return e.commit("reset", func(s domain.GameState, now time.Time) (domain.GameState, error) {
		if err := requireUser(s); err != nil {
			return s, err
		}
		log.Printf("[engine] progress reset for %q", s.User.Username)
		return e.book.ResetProgress(s, now), nil
	})
}

// User returns a copy of the player profile.
func (e *Engine) User() (domain.User, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.syncLocked()
	if e.state.User == nil {
		return domain.User{}, domain.ErrNoUser
	}
	return *e.state.User, nil
}

// ─── Activity Ledger ────────────────────────────────────────────────────────

// LogActivity records one manual activity and runs the full logging flow.
// The stored record (with its assigned id) is returned.
func (e *Engine) LogActivity(rec domain.ActivityRecord) (domain.ActivityRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Source == "" {
		rec.Source = domain.SourceManual
	}
	if rec.Unit == "" {
		rec.Unit = rec.Type.DefaultUnit()
	}
	err := e.commit("log_activity", func(s domain.GameState, now time.Time) (domain.GameState, error) {
		if err := requireUser(s); err != nil {
			return s, err
		}
		if rec.Date.IsZero() {
			rec.Date = now
		}
		if err := rec.Validate(); err != nil {
			return s, err
		}
		if s.ActivityIndex(rec.ID) >= 0 {
			return s, fmt.Errorf("%w: duplicate id %q", domain.ErrInvalidActivity, rec.ID)
		}
		return e.book.RecordActivity(s, rec, now), nil
	})
	if err != nil {
		return domain.ActivityRecord{}, err
	}
	return rec, nil
}

// LogSteps records a step count for now.
func (e *Engine) LogSteps(steps float64) (domain.ActivityRecord, error) {
	return e.LogActivity(domain.ActivityRecord{Type: domain.ActivitySteps, Value: steps})
}

// LogExercise records an exercise session for now.
func (e *Engine) LogExercise(minutes float64, details domain.ExerciseDetails) (domain.ActivityRecord, error) {
	details.DurationMinutes = minutes
	return e.LogActivity(domain.ActivityRecord{Type: domain.ActivityExercise, Value: minutes, Metadata: details})
}

// LogMeditation records a meditation session for now.
func (e *Engine) LogMeditation(minutes float64) (domain.ActivityRecord, error) {
	return e.LogActivity(domain.ActivityRecord{
		Type: domain.ActivityMeditation, Value: minutes,
		Metadata: domain.MeditationDetails{DurationMinutes: minutes},
	})
}

// LogWater records glasses of water for now.
func (e *Engine) LogWater(glasses float64) (domain.ActivityRecord, error) {
	return e.LogActivity(domain.ActivityRecord{Type: domain.ActivityWater, Value: glasses})
}

// LogMeal records one meal for now.
func (e *Engine) LogMeal(details domain.MealDetails) (domain.ActivityRecord, error) {
	return e.LogActivity(domain.ActivityRecord{Type: domain.ActivityMeal, Value: 1, Metadata: details})
}

// LogSleep records a night's sleep for now.
func (e *Engine) LogSleep(hours float64, quality domain.SleepQuality) (domain.ActivityRecord, error) {
	return e.LogActivity(domain.ActivityRecord{
		Type: domain.ActivitySleep, Value: hours,
		Metadata: domain.SleepDetails{DurationMinutes: hours * 60, Quality: quality},
	})
}

// ImportActivities bulk-imports synced records and returns how many were
// new. Invalid or already-imported records are skipped.
func (e *Engine) ImportActivities(recs []domain.ActivityRecord) (int, error) {
	var imported int
	err := e.commit("import_activities", func(s domain.GameState, now time.Time) (domain.GameState, error) {
		if err := requireUser(s); err != nil {
			return s, err
		}
		next := e.book.SyncActivities(s, recs, now)
		imported = len(next.Activities) - len(s.Activities)
		if skipped := len(recs) - imported; skipped > 0 {
			log.Printf("[engine] import: %d new, %d skipped", imported, skipped)
		}
		return next, nil
	})
	return imported, err
}

// UpdateActivity corrects an existing record.
func (e *Engine) UpdateActivity(rec domain.ActivityRecord) error {
	return e.commit("update_activity", func(s domain.GameState, now time.Time) (domain.GameState, error) {
		if err := requireUser(s); err != nil {
			return s, err
		}
		if s.ActivityIndex(rec.ID) < 0 {
			return s, domain.ErrActivityNotFound
		}
		if err := rec.Validate(); err != nil {
			return s, err
		}
		next := e.book.UpdateActivity(s, rec)
		next = e.book.DetermineClass(next, now)
		return e.book.UpdateQuestProgress(next, now), nil
	})
}

// DeleteActivity removes a record.
func (e *Engine) DeleteActivity(id string) error {
	return e.commit("delete_activity", func(s domain.GameState, now time.Time) (domain.GameState, error) {
		if err := requireUser(s); err != nil {
			return s, err
		}
		if s.ActivityIndex(id) < 0 {
			return s, domain.ErrActivityNotFound
		}
		next := e.book.DeleteActivity(s, id)
		next = e.book.DetermineClass(next, now)
		return e.book.UpdateQuestProgress(next, now), nil
	})
}

// Activities returns records in [start, end).
func (e *Engine) Activities(start, end time.Time) []domain.ActivityRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.syncLocked()
	return e.book.ActivitiesInRange(e.state, start, end)
}

// TodayActivities returns today's records.
func (e *Engine) TodayActivities() []domain.ActivityRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.syncLocked()
	return e.book.TodayActivities(e.state, e.now())
}

// DailySummary returns the summary of the day containing date.
func (e *Engine) DailySummary(date time.Time) (domain.DailySummary, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.syncLocked()
	return e.book.DailySummary(e.state, date)
}

// ─── Character ──────────────────────────────────────────────────────────────

// AddXP grants XP directly.
func (e *Engine) AddXP(amount int64) error {
	if amount < 0 {
		return fmt.Errorf("xp amount must not be negative, got %d", amount)
	}
	return e.commit("add_xp", func(s domain.GameState, now time.Time) (domain.GameState, error) {
		if err := requireUser(s); err != nil {
			return s, err
		}
		return e.book.CheckAchievements(e.book.AddXP(s, amount, now), now), nil
	})
}

// AddGold grants gold directly.
func (e *Engine) AddGold(amount int64) error {
	if amount < 0 {
		return fmt.Errorf("gold amount must not be negative, got %d", amount)
	}
	return e.commit("add_gold", func(s domain.GameState, now time.Time) (domain.GameState, error) {
		if err := requireUser(s); err != nil {
			return s, err
		}
		return e.book.AddGold(s, amount, now), nil
	})
}

// TakeDamage lowers HP.
func (e *Engine) TakeDamage(amount int) error {
	return e.commit("take_damage", func(s domain.GameState, _ time.Time) (domain.GameState, error) {
		if err := requireUser(s); err != nil {
			return s, err
		}
		return e.book.TakeDamage(s, amount), nil
	})
}

// Heal raises HP.
func (e *Engine) Heal(amount int) error {
	return e.commit("heal", func(s domain.GameState, _ time.Time) (domain.GameState, error) {
		if err := requireUser(s); err != nil {
			return s, err
		}
		return e.book.Heal(s, amount), nil
	})
}

// ─── Quests ─────────────────────────────────────────────────────────────────

// ActiveQuests returns the active quest list.
func (e *Engine) ActiveQuests() []domain.Quest {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.syncLocked()
	return append([]domain.Quest(nil), e.state.ActiveQuests...)
}

// CompletedQuests returns the completed quest list, oldest first.
func (e *Engine) CompletedQuests() []domain.Quest {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.syncLocked()
	return append([]domain.Quest(nil), e.state.CompletedQuests...)
}

// CreateCustomQuest adds a player-defined quest.
func (e *Engine) CreateCustomQuest(spec CustomQuestSpec) (domain.Quest, error) {
	var q domain.Quest
	err := e.commit("create_quest", func(s domain.GameState, now time.Time) (domain.GameState, error) {
		if err := requireUser(s); err != nil {
			return s, err
		}
		var err error
		q, err = e.book.NewCustomQuest(spec, now)
		if err != nil {
			return s, err
		}
		next := e.book.AddQuests(s, []domain.Quest{q})
		return e.book.UpdateQuestProgress(next, now), nil
	})
	return q, err
}

// CompleteQuest completes an active quest. Completing an already completed
// quest succeeds without paying again.
func (e *Engine) CompleteQuest(id string) error {
	return e.commit("complete_quest", func(s domain.GameState, now time.Time) (domain.GameState, error) {
		if err := requireUser(s); err != nil {
			return s, err
		}
		if s.ActiveQuestIndex(id) < 0 {
			if s.CompletedQuestIndex(id) >= 0 {
				return s, nil
			}
			return s, domain.ErrQuestNotFound
		}
		return e.book.FinishQuest(s, id, now), nil
	})
}

// DeleteQuest drops an active quest without reward.
func (e *Engine) DeleteQuest(id string) error {
	return e.commit("delete_quest", func(s domain.GameState, _ time.Time) (domain.GameState, error) {
		if err := requireUser(s); err != nil {
			return s, err
		}
		if s.ActiveQuestIndex(id) < 0 {
			return s, domain.ErrQuestNotFound
		}
		return e.book.DeleteQuest(s, id), nil
	})
}

// UpdateQuestProgress re-reads today's summary into every active quest.
func (e *Engine) UpdateQuestProgress() error {
	return e.commit("update_quest_progress", func(s domain.GameState, now time.Time) (domain.GameState, error) {
		if err := requireUser(s); err != nil {
			return s, err
		}
		return e.book.CheckAchievements(e.book.UpdateQuestProgress(s, now), now), nil
	})
}

// ─── Achievements ───────────────────────────────────────────────────────────

// Achievements returns the catalog with progress.
func (e *Engine) Achievements() []domain.Achievement {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.syncLocked()
	return append([]domain.Achievement(nil), e.state.Achievements...)
}

// UpdateAchievementProgress sets an achievement's progress watermark.
func (e *Engine) UpdateAchievementProgress(id string, progress float64) error {
	return e.commit("update_achievement", func(s domain.GameState, now time.Time) (domain.GameState, error) {
		if err := requireUser(s); err != nil {
			return s, err
		}
		if s.AchievementIndex(id) < 0 {
			return s, domain.ErrAchievementNotFound
		}
		return e.book.UpdateAchievementProgress(s, id, progress, now), nil
	})
}

// CheckAchievements runs the achievement sweep.
func (e *Engine) CheckAchievements() error {
	return e.commit("check_achievements", func(s domain.GameState, now time.Time) (domain.GameState, error) {
		if err := requireUser(s); err != nil {
			return s, err
		}
		return e.book.CheckAchievements(s, now), nil
	})
}

// ─── Streaks ────────────────────────────────────────────────────────────────

// Streaks returns every tracked streak.
func (e *Engine) Streaks() []domain.Streak {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.syncLocked()
	return append([]domain.Streak(nil), e.state.Streaks...)
}

// UpdateStreak advances a streak for today.
func (e *Engine) UpdateStreak(t domain.StreakType, referenceID string) error {
	return e.commit("update_streak", func(s domain.GameState, now time.Time) (domain.GameState, error) {
		if err := requireUser(s); err != nil {
			return s, err
		}
		return e.book.CheckAchievements(e.book.UpdateStreak(s, t, referenceID, now), now), nil
	})
}

// BreakStreak resets a streak.
func (e *Engine) BreakStreak(t domain.StreakType, referenceID string) error {
	return e.commit("break_streak", func(s domain.GameState, _ time.Time) (domain.GameState, error) {
		if err := requireUser(s); err != nil {
			return s, err
		}
		if s.StreakIndex(t, referenceID) < 0 {
			return s, domain.ErrStreakNotFound
		}
		return e.book.BreakStreak(s, t, referenceID), nil
	})
}

// BuyStreakFreeze spends gold on a freeze.
func (e *Engine) BuyStreakFreeze(t domain.StreakType, referenceID string) error {
	return e.commit("buy_freeze", func(s domain.GameState, _ time.Time) (domain.GameState, error) {
		if err := requireUser(s); err != nil {
			return s, err
		}
		if s.StreakIndex(t, referenceID) < 0 {
			return s, domain.ErrStreakNotFound
		}
		if cost := e.book.Rules().Streaks.FreezeCost; s.User.Character.Gold < cost {
			return s, fmt.Errorf("%w: freeze costs %d, have %d", domain.ErrInsufficientGold, cost, s.User.Character.Gold)
		}
		return e.book.BuyStreakFreeze(s, t, referenceID), nil
	})
}

// ─── Inventory ──────────────────────────────────────────────────────────────

// Inventory returns the item stacks.
func (e *Engine) Inventory() []domain.InventoryItem {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.syncLocked()
	return append([]domain.InventoryItem(nil), e.state.Inventory...)
}

// AddItem puts items into the inventory.
func (e *Engine) AddItem(item domain.InventoryItem) error {
	return e.commit("add_item", func(s domain.GameState, _ time.Time) (domain.GameState, error) {
		if err := requireUser(s); err != nil {
			return s, err
		}
		if err := item.Validate(); err != nil {
			return s, err
		}
		return e.book.AddItem(s, item), nil
	})
}

// UseItem consumes one item and applies its effect.
func (e *Engine) UseItem(id string) error {
	return e.commit("use_item", func(s domain.GameState, _ time.Time) (domain.GameState, error) {
		if err := requireUser(s); err != nil {
			return s, err
		}
		if s.ItemIndex(id) < 0 {
			return s, domain.ErrItemNotFound
		}
		return e.book.UseItem(s, id), nil
	})
}

// RemoveItem drops a stack.
func (e *Engine) RemoveItem(id string) error {
	return e.commit("remove_item", func(s domain.GameState, _ time.Time) (domain.GameState, error) {
		if err := requireUser(s); err != nil {
			return s, err
		}
		if s.ItemIndex(id) < 0 {
			return s, domain.ErrItemNotFound
		}
		return e.book.RemoveItem(s, id), nil
	})
}

// ─── Notifications ──────────────────────────────────────────────────────────

// Notifications returns notifications newest first and the unread count.
func (e *Engine) Notifications() ([]domain.Notification, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.syncLocked()
	return append([]domain.Notification(nil), e.state.Notifications...), e.state.UnreadCount
}

// MarkNotificationRead marks one notification read. Unknown ids are ignored.
func (e *Engine) MarkNotificationRead(id string) error {
	return e.commit("mark_read", func(s domain.GameState, _ time.Time) (domain.GameState, error) {
		return e.book.MarkNotificationRead(s, id), nil
	})
}

// MarkAllNotificationsRead marks every notification read.
func (e *Engine) MarkAllNotificationsRead() error {
	return e.commit("mark_all_read", func(s domain.GameState, _ time.Time) (domain.GameState, error) {
		return e.book.MarkAllNotificationsRead(s), nil
	})
}

// ClearNotifications drops every notification.
func (e *Engine) ClearNotifications() error {
	return e.commit("clear_notifications", func(s domain.GameState, _ time.Time) (domain.GameState, error) {
		return e.book.ClearNotifications(s), nil
	})
}

// ─── Maintenance ────────────────────────────────────────────────────────────

// SweepReport summarizes one maintenance pass.
type SweepReport struct {
	QuestsExpired  int
	StreaksBroken  int
	QuestsAdded    int
	QuestsFinished int
}

// Sweep runs the day-boundary maintenance in one transition: expire missed
// daily quests, walk streaks forward, regenerate quest batches, then
// refresh progress and achievements.
func (e *Engine) Sweep() (SweepReport, error) {
	var rep SweepReport
	err := e.commit("sweep", func(s domain.GameState, now time.Time) (domain.GameState, error) {
		if err := requireUser(s); err != nil {
			return s, err
		}
		next := e.book.CheckMissedQuests(s, now)
		rep.QuestsExpired = len(s.ActiveQuests) - len(next.ActiveQuests)

		brokenBefore := countBroken(next.Streaks)
		next = e.book.ExpireStreaks(next, now)
		rep.StreaksBroken = countBroken(next.Streaks) - brokenBefore

		next = e.book.DetermineClass(next, now)

		active := len(next.ActiveQuests)
		next = e.book.EnsureDailyQuests(next, now)
		next = e.book.EnsureWeeklyQuests(next, now)
		rep.QuestsAdded = max(len(next.ActiveQuests)-active, 0)

		done := len(next.CompletedQuests)
		next = e.book.UpdateQuestProgress(next, now)
		next = e.book.CheckAchievements(next, now)
		rep.QuestsFinished = len(next.CompletedQuests) - done
		return next, nil
	})
	if errors.Is(err, domain.ErrNoUser) {
		return rep, nil
	}
	return rep, err
}

func countBroken(streaks []domain.Streak) int {
	n := 0
	for _, st := range streaks {
		if st.CurrentStreak == 0 {
			n++
		}
	}
	return n
}
