// Package active enforces the singleton-active invariant shared by
// the announcement-slot entity types: across all rows of one type, at
// most one may be active at any time.
package active

import (
	"context"
	"errors"
	"fmt"

	"packvault/logger"
)

// ErrSlotOccupied is returned when activation would create a second
// active row. The incumbent must be deactivated explicitly first.
var ErrSlotOccupied = errors.New("another row is already active")

// ErrNotFound is returned when the candidate row does not exist.
var ErrNotFound = errors.New("row not found")

// SlotStore is implemented by repositories whose entity type owns an
// exclusive presentation slot. ActivateExclusive must be a single
// atomic conditional write: it either flips the candidate active while
// no other row is active, or fails with ErrSlotOccupied. A
// read-then-write implementation would reintroduce the race this
// package exists to close.
type SlotStore interface {
	ActivateExclusive(ctx context.Context, id string) error
	Deactivate(ctx context.Context, id string) error
}

// Enforcer guards one entity type's slot.
type Enforcer struct {
	store SlotStore
	kind  string
}

// NewEnforcer creates an enforcer for one entity type, e.g. "banner".
func NewEnforcer(store SlotStore, kind string) *Enforcer {
	return &Enforcer{store: store, kind: kind}
}

// Activate makes the candidate the single active row of its type.
// Fails with ErrSlotOccupied while any other row is active.
func (e *Enforcer) Activate(ctx context.Context, id string) error {
	if err := e.store.ActivateExclusive(ctx, id); err != nil {
		if errors.Is(err, ErrSlotOccupied) {
			return fmt.Errorf("cannot activate %s %s: another %s is currently active: %w", e.kind, id, e.kind, ErrSlotOccupied)
		}
		return err
	}

	logger.Info("slot activated", logger.String("kind", e.kind), logger.String("id", id))
	return nil
}

// Deactivate clears the candidate's active flag. Always succeeds for
// existing rows, whether or not they were active.
func (e *Enforcer) Deactivate(ctx context.Context, id string) error {
	if err := e.store.Deactivate(ctx, id); err != nil {
		return err
	}

	logger.Info("slot deactivated", logger.String("kind", e.kind), logger.String("id", id))
	return nil
}
