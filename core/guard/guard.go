// Package guard blocks hard deletion of referenced entities. The same
// usage-count rule applies to categories, genres, creators and packs;
// one guard covers them all, parameterized by a count query per
// entity type.
package guard

import (
	"context"
	"fmt"
)

// CountFunc returns the live usage count for one entity instance.
type CountFunc func(ctx context.Context, id int64) (int64, error)

// BlockedError is returned when deletion is refused. Its message
// names the blocking condition so operators are steered toward
// disable instead of delete.
type BlockedError struct {
	Entity string
	ID     int64
	Usage  int64
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("cannot delete %s %d: %d record(s) still reference it; disable it instead", e.Entity, e.ID, e.Usage)
}

// Guard evaluates usage counts before destructive operations. The
// check is advisory: repositories do not enforce it, callers must ask
// first.
type Guard struct {
	counters map[string]CountFunc
}

// New creates an empty guard.
func New() *Guard {
	return &Guard{counters: make(map[string]CountFunc)}
}

// Register binds an entity type name to its usage-count query.
func (g *Guard) Register(entity string, fn CountFunc) {
	g.counters[entity] = fn
}

// CanDelete returns nil when the entity has zero usage, a
// *BlockedError when records still reference it, and a plain error
// for unknown entity types or failed count queries.
func (g *Guard) CanDelete(ctx context.Context, entity string, id int64) error {
	fn, ok := g.counters[entity]
	if !ok {
		return fmt.Errorf("no deletion guard registered for entity type %q", entity)
	}

	usage, err := fn(ctx, id)
	if err != nil {
		return fmt.Errorf("usage count for %s %d failed: %w", entity, id, err)
	}
	if usage > 0 {
		return &BlockedError{Entity: entity, ID: id, Usage: usage}
	}
	return nil
}
