package domain

// ─── Service Interfaces ─────────────────────────────────────────────────────
// These interfaces define boundaries between layers.
// Infrastructure implements them; application layer depends on them.

// StateStore persists the single-user game state.
// The rules engine never touches it; the Engine adapter saves after every
// committed transition. Several processes may share one store, so every
// save carries the revision it was based on.
type StateStore interface {
	// LoadState returns the stored state and its revision. A fresh store
	// returns an empty state at revision 0.
	LoadState() (state GameState, rev int64, err error)

	// StateRevision returns the revision of the stored state.
	StateRevision() (int64, error)

	// SaveState replaces the stored state atomically if it is still at
	// revision expected, and returns the new revision. Otherwise it
	// returns ErrStaleState and stores nothing.
	SaveState(state GameState, expected int64) (int64, error)
}
