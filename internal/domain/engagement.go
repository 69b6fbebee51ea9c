// Package domain — engagement types.
// The engagement engine turns health activity into character progression:
// XP, levels, HP, gold, quests, achievements, streaks and notifications.
package domain

import (
	"fmt"
	"time"
)

// ─── Character / User ───────────────────────────────────────────────────────

// CharacterClass is derived from the player's average daily activity.
type CharacterClass string

const (
	ClassVillager CharacterClass = "villager"
	ClassWarrior  CharacterClass = "warrior"
	ClassMonk     CharacterClass = "monk"
	ClassAssassin CharacterClass = "assassin"
)

// Description returns the one-line flavor text of the class.
func (c CharacterClass) Description() string {
	switch c {
	case ClassWarrior:
		return "Masters of strength and endurance through intense training"
	case ClassMonk:
		return "Enlightened souls who find power in meditation and mindfulness"
	case ClassAssassin:
		return "Swift and agile, covering vast distances with ease"
	}
	return "Beginning their journey towards greatness"
}

// Character is the player's game avatar.
// Invariant: Level is derived from TotalXP via the threshold table and
// CurrentXP = TotalXP - threshold[Level-1].
type Character struct {
	Name      string         `json:"name"`
	Class     CharacterClass `json:"class"`
	Level     int            `json:"level"`
	CurrentXP int64          `json:"current_xp"`
	TotalXP   int64          `json:"total_xp"`
	HP        int            `json:"hp"`
	MaxHP     int            `json:"max_hp"`
	Gold      int64          `json:"gold"`
}

// UserStats holds lifetime counters read by achievements and the UI.
type UserStats struct {
	TotalQuestsCompleted      int       `json:"total_quests_completed"`
	TotalAchievementsUnlocked int       `json:"total_achievements_unlocked"`
	CurrentStreak             int       `json:"current_streak"`
	LongestStreak             int       `json:"longest_streak"`
	TotalSteps                float64   `json:"total_steps"`
	TotalExerciseMinutes      float64   `json:"total_exercise_minutes"`
	TotalMeditationMinutes    float64   `json:"total_meditation_minutes"`
	JoinedDate                time.Time `json:"joined_date"`
	LastActiveDate            time.Time `json:"last_active_date"`
}

// User is the single local player profile.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	Character Character `json:"character"`
	Stats     UserStats `json:"stats"`
}

// ─── Quest Types ────────────────────────────────────────────────────────────

// QuestType is the cadence of a quest.
type QuestType string

const (
	QuestDaily  QuestType = "daily"
	QuestWeekly QuestType = "weekly"
	QuestCustom QuestType = "custom"
)

// QuestCategory groups quests (and achievements) by health area.
type QuestCategory string

const (
	CategoryFitness     QuestCategory = "fitness"
	CategoryNutrition   QuestCategory = "nutrition"
	CategoryMindfulness QuestCategory = "mindfulness"
	CategorySleep       QuestCategory = "sleep"
	CategoryHydration   QuestCategory = "hydration"
	CategoryCustom      QuestCategory = "custom"
)

// QuestDifficulty scales custom quest rewards.
type QuestDifficulty string

const (
	DifficultyEasy   QuestDifficulty = "easy"
	DifficultyMedium QuestDifficulty = "medium"
	DifficultyHard   QuestDifficulty = "hard"
	DifficultyEpic   QuestDifficulty = "epic"
)

// Quest is a goal with a target measured against a DailySummary metric.
// A quest lives in exactly one of GameState.ActiveQuests or
// GameState.CompletedQuests.
type Quest struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Type        QuestType       `json:"type"`
	Category    QuestCategory   `json:"category"`
	Metric      ProgressMetric  `json:"metric,omitempty"`
	Difficulty  QuestDifficulty `json:"difficulty"`
	XPReward    int64           `json:"xp_reward"`
	GoldReward  int64           `json:"gold_reward"`
	Progress    float64         `json:"progress"`
	Target      float64         `json:"target"`
	Completed   bool            `json:"completed"`
	CompletedAt time.Time       `json:"completed_at,omitzero"`
	CreatedAt   time.Time       `json:"created_at"`
	DueDate     time.Time       `json:"due_date,omitzero"`
	Streak      int             `json:"streak"`
	Icon        string          `json:"icon,omitempty"`
}

// IsOverdue reports whether the quest has a due date before now.
func (q Quest) IsOverdue(now time.Time) bool {
	return !q.DueDate.IsZero() && q.DueDate.Before(now)
}

// ProgressPct returns completion percentage (0-100).
func (q Quest) ProgressPct() float64 {
	if q.Target <= 0 {
		return 100.0
	}
	pct := q.Progress / q.Target * 100.0
	if pct > 100.0 {
		pct = 100.0
	}
	return pct
}

// ─── Achievement Types ──────────────────────────────────────────────────────

// AchievementRarity is a cosmetic tier.
type AchievementRarity string

const (
	RarityCommon    AchievementRarity = "common"
	RarityUncommon  AchievementRarity = "uncommon"
	RarityRare      AchievementRarity = "rare"
	RarityEpic      AchievementRarity = "epic"
	RarityLegendary AchievementRarity = "legendary"
)

// AchievementStat names the statistic an achievement watches.
type AchievementStat string

const (
	StatTodaySteps             AchievementStat = "today_steps"
	StatTodayExerciseMinutes   AchievementStat = "today_exercise_minutes"
	StatTodayMeditationMinutes AchievementStat = "today_meditation_minutes"
	StatTodayWaterGlasses      AchievementStat = "today_water_glasses"
	StatTotalSteps             AchievementStat = "total_steps"
	StatTotalMeditationMinutes AchievementStat = "total_meditation_minutes"
	StatMealsLogged            AchievementStat = "meals_logged"
	StatGoodSleepToday         AchievementStat = "good_sleep_today"
	StatGoodSleepNights        AchievementStat = "good_sleep_nights"
	StatCurrentStreak          AchievementStat = "current_streak"
	StatQuestsCompleted        AchievementStat = "quests_completed"
	StatLevel                  AchievementStat = "level"
)

// Achievement is one entry of the global catalog.
// Progress is a watermark: it is set to the latest observed statistic.
// Unlocked only ever goes false -> true.
type Achievement struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Icon        string            `json:"icon,omitempty"`
	Rarity      AchievementRarity `json:"rarity"`
	Category    QuestCategory     `json:"category"`
	Stat        AchievementStat   `json:"stat,omitempty"`
	Gate        float64           `json:"gate,omitempty"` // stat must reach this before progress is fed
	Unlocked    bool              `json:"unlocked"`
	UnlockedAt  time.Time         `json:"unlocked_at,omitzero"`
	Progress    float64           `json:"progress"`
	Target      float64           `json:"target"`
	XPReward    int64             `json:"xp_reward"`
	GoldReward  int64             `json:"gold_reward"`
	Hidden      bool              `json:"hidden"`
}

// ─── Streak Types ───────────────────────────────────────────────────────────

// StreakType is the family a streak belongs to.
type StreakType string

const (
	StreakOverall  StreakType = "overall"
	StreakQuest    StreakType = "quest"
	StreakActivity StreakType = "activity"
)

// Streak counts consecutive qualifying completions for (Type, ReferenceID).
type Streak struct {
	Type              StreakType `json:"type"`
	ReferenceID       string     `json:"reference_id,omitempty"`
	CurrentStreak     int        `json:"current_streak"`
	LongestStreak     int        `json:"longest_streak"`
	LastCompletedDate time.Time  `json:"last_completed_date"`
	FreezesAvailable  int        `json:"freezes_available"`
}

// Matches reports whether the streak has the given compound key.
func (s Streak) Matches(t StreakType, referenceID string) bool {
	return s.Type == t && s.ReferenceID == referenceID
}

// ─── Inventory Types ────────────────────────────────────────────────────────

// ItemType is the broad kind of an inventory item.
type ItemType string

const (
	ItemConsumable ItemType = "consumable"
	ItemEquipment  ItemType = "equipment"
	ItemCosmetic   ItemType = "cosmetic"
)

// EffectType names what using an item does.
type EffectType string

// EffectHPRestore heals the character by the effect value.
const EffectHPRestore EffectType = "hp_restore"

// ItemEffect is applied once per use.
type ItemEffect struct {
	Type  EffectType `json:"type"`
	Value int        `json:"value"`
}

// InventoryItem is a stack of identical items. Items with the same ID
// merge into one stack; a stack used down to zero is removed.
type InventoryItem struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Type        ItemType          `json:"type"`
	Rarity      AchievementRarity `json:"rarity"`
	Icon        string            `json:"icon,omitempty"`
	Quantity    int               `json:"quantity"`
	Effect      ItemEffect        `json:"effect,omitzero"`
}

// Validate checks an item before it enters the inventory.
func (it InventoryItem) Validate() error {
	if it.ID == "" || it.Name == "" {
		return fmt.Errorf("%w: id and name are required", ErrInvalidItem)
	}
	switch it.Type {
	case ItemConsumable, ItemEquipment, ItemCosmetic:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidItem, it.Type)
	}
	if it.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive, got %d", ErrInvalidItem, it.Quantity)
	}
	switch it.Effect.Type {
	case "":
	case EffectHPRestore:
		if it.Effect.Value <= 0 {
			return fmt.Errorf("%w: hp_restore needs a positive value", ErrInvalidItem)
		}
	default:
		return fmt.Errorf("%w: unsupported effect %q", ErrInvalidItem, it.Effect.Type)
	}
	return nil
}

// ─── Notification Types ─────────────────────────────────────────────────────

// NotificationType categorizes notifications.
type NotificationType string

const (
	NotifyLevelUp       NotificationType = "level_up"
	NotifyQuestComplete NotificationType = "quest_complete"
	NotifyAchievement   NotificationType = "achievement"
	NotifyStreakAlert   NotificationType = "streak_alert"
	NotifyReminder      NotificationType = "reminder"
)

// Notification is a user-facing event emitted by the engine. Delivery is
// left to the presentation layer.
type Notification struct {
	ID        string           `json:"id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Icon      string           `json:"icon,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Read      bool             `json:"read"`
}
