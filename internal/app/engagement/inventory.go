package engagement

import (
	"slices"

	"github.com/vitalquest/vitalquest/internal/domain"
)

// ─── Inventory ──────────────────────────────────────────────────────────────
// Stacks are keyed by item id. Using an item applies its effect once and
// takes one from the stack; an empty stack disappears.

// AddItem puts items into the inventory, merging into an existing stack.
// Invalid items are a no-op.
func (r Rulebook) AddItem(s domain.GameState, item domain.InventoryItem) domain.GameState {
	if s.User == nil || item.Validate() != nil {
		return s
	}
	next := s.Clone()
	if i := next.ItemIndex(item.ID); i >= 0 {
		next.Inventory[i].Quantity += item.Quantity
		return next
	}
	next.Inventory = append(next.Inventory, item)
	return next
}

// UseItem consumes one item and applies its effect. Unknown or empty
// stacks are a no-op.
func (r Rulebook) UseItem(s domain.GameState, id string) domain.GameState {
	i := s.ItemIndex(id)
	if s.User == nil || i < 0 || s.Inventory[i].Quantity <= 0 {
		return s
	}
	next := s.Clone()
	item := next.Inventory[i]
	if item.Effect.Type == domain.EffectHPRestore {
		heal(&next.User.Character, item.Effect.Value)
	}
	if item.Quantity <= 1 {
		next.Inventory = slices.Delete(next.Inventory, i, i+1)
	} else {
		next.Inventory[i].Quantity--
	}
	return next
}

// RemoveItem drops a whole stack without using it.
func (r Rulebook) RemoveItem(s domain.GameState, id string) domain.GameState {
	i := s.ItemIndex(id)
	if i < 0 {
		return s
	}
	next := s.Clone()
	next.Inventory = slices.Delete(next.Inventory, i, i+1)
	return next
}
