package guard_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"packvault/core/guard"
)

func TestCanDeleteUnreferencedEntity(t *testing.T) {
	g := guard.New()
	g.Register("genre", func(ctx context.Context, id int64) (int64, error) {
		return 0, nil
	})

	if err := g.CanDelete(context.Background(), "genre", 3); err != nil {
		t.Fatalf("CanDelete returned error: %v", err)
	}
}

func TestCanDeleteBlocksReferencedEntity(t *testing.T) {
	g := guard.New()
	g.Register("creator", func(ctx context.Context, id int64) (int64, error) {
		return 4, nil
	})

	err := g.CanDelete(context.Background(), "creator", 9)
	var blocked *guard.BlockedError
	if !errors.As(err, &blocked) {
		t.Fatalf("expected a BlockedError, got %v", err)
	}
	if blocked.Usage != 4 || blocked.ID != 9 {
		t.Fatalf("unexpected error detail: %+v", blocked)
	}
	if !strings.Contains(err.Error(), "disable it instead") {
		t.Fatalf("message does not point to disable: %q", err.Error())
	}
}

func TestCanDeleteUnknownEntityType(t *testing.T) {
	g := guard.New()
	if err := g.CanDelete(context.Background(), "album", 1); err == nil {
		t.Fatal("expected an error for an unregistered entity type")
	}
}

func TestCanDeletePropagatesCountFailure(t *testing.T) {
	bang := errors.New("connection lost")
	g := guard.New()
	g.Register("pack", func(ctx context.Context, id int64) (int64, error) {
		return 0, bang
	})

	err := g.CanDelete(context.Background(), "pack", 1)
	if !errors.Is(err, bang) {
		t.Fatalf("count failure not propagated: %v", err)
	}
	var blocked *guard.BlockedError
	if errors.As(err, &blocked) {
		t.Fatal("count failure must not masquerade as a block")
	}
}
