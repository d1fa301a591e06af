package active_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"packvault/core/active"
)

// memorySlotStore keeps slot state in memory with the same contract
// the SQL implementations honor.
type memorySlotStore struct {
	rows   map[string]bool // id -> active
	active string
}

func newMemorySlotStore(ids ...string) *memorySlotStore {
	rows := make(map[string]bool, len(ids))
	for _, id := range ids {
		rows[id] = false
	}
	return &memorySlotStore{rows: rows}
}

func (s *memorySlotStore) ActivateExclusive(ctx context.Context, id string) error {
	if _, ok := s.rows[id]; !ok {
		return active.ErrNotFound
	}
	if s.active == id {
		return nil
	}
	if s.active != "" {
		return active.ErrSlotOccupied
	}
	s.rows[id] = true
	s.active = id
	return nil
}

func (s *memorySlotStore) Deactivate(ctx context.Context, id string) error {
	if _, ok := s.rows[id]; !ok {
		return active.ErrNotFound
	}
	s.rows[id] = false
	if s.active == id {
		s.active = ""
	}
	return nil
}

func TestActivateClaimsFreeSlot(t *testing.T) {
	store := newMemorySlotStore("a", "b")
	enforcer := active.NewEnforcer(store, "banner")

	if err := enforcer.Activate(context.Background(), "a"); err != nil {
		t.Fatalf("Activate returned error: %v", err)
	}
	if store.active != "a" {
		t.Fatalf("slot holder is %q, want a", store.active)
	}
}

func TestActivateRejectsOccupiedSlot(t *testing.T) {
	store := newMemorySlotStore("a", "b")
	enforcer := active.NewEnforcer(store, "banner")

	if err := enforcer.Activate(context.Background(), "a"); err != nil {
		t.Fatalf("first Activate returned error: %v", err)
	}
	err := enforcer.Activate(context.Background(), "b")
	if !errors.Is(err, active.ErrSlotOccupied) {
		t.Fatalf("expected ErrSlotOccupied, got %v", err)
	}
	if !strings.Contains(err.Error(), "banner") {
		t.Fatalf("conflict message does not name the entity type: %q", err.Error())
	}
	if store.active != "a" {
		t.Fatalf("incumbent displaced: %q", store.active)
	}
}

func TestActivateAfterDeactivateSucceeds(t *testing.T) {
	store := newMemorySlotStore("a", "b")
	enforcer := active.NewEnforcer(store, "popup")

	if err := enforcer.Activate(context.Background(), "a"); err != nil {
		t.Fatalf("Activate returned error: %v", err)
	}
	if err := enforcer.Deactivate(context.Background(), "a"); err != nil {
		t.Fatalf("Deactivate returned error: %v", err)
	}
	if err := enforcer.Activate(context.Background(), "b"); err != nil {
		t.Fatalf("Activate after Deactivate returned error: %v", err)
	}
	if store.active != "b" {
		t.Fatalf("slot holder is %q, want b", store.active)
	}
}

func TestActivateAlreadyActiveIsIdempotent(t *testing.T) {
	store := newMemorySlotStore("a")
	enforcer := active.NewEnforcer(store, "banner")

	if err := enforcer.Activate(context.Background(), "a"); err != nil {
		t.Fatalf("Activate returned error: %v", err)
	}
	if err := enforcer.Activate(context.Background(), "a"); err != nil {
		t.Fatalf("re-activating the incumbent must succeed, got %v", err)
	}
}

func TestDeactivateInactiveRowSucceeds(t *testing.T) {
	store := newMemorySlotStore("a")
	enforcer := active.NewEnforcer(store, "banner")

	if err := enforcer.Deactivate(context.Background(), "a"); err != nil {
		t.Fatalf("deactivating an inactive row must succeed, got %v", err)
	}
}

func TestMissingRowReturnsNotFound(t *testing.T) {
	store := newMemorySlotStore("a")
	enforcer := active.NewEnforcer(store, "banner")

	if err := enforcer.Activate(context.Background(), "ghost"); !errors.Is(err, active.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := enforcer.Deactivate(context.Background(), "ghost"); !errors.Is(err, active.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
