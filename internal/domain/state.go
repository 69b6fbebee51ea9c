package domain

import "slices"

// GameState is the whole single-user state tree. Engine transitions take a
// GameState and return a new one; nothing else mutates it.
type GameState struct {
	User            *User                   `json:"user"`
	ActiveQuests    []Quest                 `json:"active_quests"`
	CompletedQuests []Quest                 `json:"completed_quests"`
	Achievements    []Achievement           `json:"achievements"`
	Streaks         []Streak                `json:"streaks"`
	Notifications   []Notification          `json:"notifications"`
	UnreadCount     int                     `json:"unread_count"`
	Inventory       []InventoryItem         `json:"inventory"`
	Activities      []ActivityRecord        `json:"activities"`
	DailySummaries  map[string]DailySummary `json:"daily_summaries"` // keyed by DayKey
}

// Clone returns a deep copy so a transition can build its result without
// touching the state it was given.
func (s GameState) Clone() GameState {
	out := GameState{
		ActiveQuests:    slices.Clone(s.ActiveQuests),
		CompletedQuests: slices.Clone(s.CompletedQuests),
		Achievements:    slices.Clone(s.Achievements),
		Streaks:         slices.Clone(s.Streaks),
		Notifications:   slices.Clone(s.Notifications),
		UnreadCount:     s.UnreadCount,
		Inventory:       slices.Clone(s.Inventory),
		Activities:      slices.Clone(s.Activities),
		DailySummaries:  make(map[string]DailySummary, len(s.DailySummaries)),
	}
	if s.User != nil {
		u := *s.User
		out.User = &u
	}
	for k, v := range s.DailySummaries {
		out.DailySummaries[k] = v
	}
	return out
}

// ActiveQuestIndex returns the index of an active quest, or -1.
func (s GameState) ActiveQuestIndex(id string) int {
	return slices.IndexFunc(s.ActiveQuests, func(q Quest) bool { return q.ID == id })
}

// CompletedQuestIndex returns the index of a completed quest, or -1.
func (s GameState) CompletedQuestIndex(id string) int {
	return slices.IndexFunc(s.CompletedQuests, func(q Quest) bool { return q.ID == id })
}

// AchievementIndex returns the index of an achievement, or -1.
func (s GameState) AchievementIndex(id string) int {
	return slices.IndexFunc(s.Achievements, func(a Achievement) bool { return a.ID == id })
}

// ActivityIndex returns the index of an activity record, or -1.
func (s GameState) ActivityIndex(id string) int {
	return slices.IndexFunc(s.Activities, func(a ActivityRecord) bool { return a.ID == id })
}

// ItemIndex returns the index of an inventory stack, or -1.
func (s GameState) ItemIndex(id string) int {
	return slices.IndexFunc(s.Inventory, func(it InventoryItem) bool { return it.ID == id })
}

// StreakIndex returns the index of the streak with the compound key, or -1.
func (s GameState) StreakIndex(t StreakType, referenceID string) int {
	return slices.IndexFunc(s.Streaks, func(st Streak) bool { return st.Matches(t, referenceID) })
}

// UnlockedAchievements returns the unlocked subset of the catalog.
func (s GameState) UnlockedAchievements() []Achievement {
	var out []Achievement
	for _, a := range s.Achievements {
		if a.Unlocked {
			out = append(out, a)
		}
	}
	return out
}
