package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.
// The rules engine itself never returns them: transitions on unknown ids are
// no-ops. The Engine and the API use them to say what was ignored.

var (
	// Profile errors
	ErrNoUser     = errors.New("no user profile initialized")
	ErrUserExists = errors.New("user profile already exists")

	// Lookup errors
	ErrQuestNotFound       = errors.New("quest not found")
	ErrAchievementNotFound = errors.New("achievement not found")
	ErrActivityNotFound    = errors.New("activity not found")
	ErrStreakNotFound      = errors.New("streak not found")
	ErrItemNotFound        = errors.New("inventory item not found")

	// Input errors
	ErrInvalidActivity = errors.New("invalid activity record")
	ErrInvalidQuest    = errors.New("invalid quest definition")
	ErrInvalidItem     = errors.New("invalid inventory item")

	// Economy errors
	ErrInsufficientGold = errors.New("insufficient gold")

	// Storage errors
	ErrStaleState = errors.New("stored state changed since last load")
)
