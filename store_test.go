package certify

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStoreFindPut(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.FindByID(ctx, "u1")
	if !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("error = %v, want ErrRecordNotFound", err)
	}

	rec := Record{ID: "u1", Name: "Ana", Grade: "A", CreatedAt: time.Now()}
	if err := store.Put(ctx, rec); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := store.FindByID(ctx, "u1")
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if got != rec {
		t.Errorf("record = %+v, want %+v", got, rec)
	}
	if store.Len() != 1 {
		t.Errorf("len = %d, want 1", store.Len())
	}
}

func TestMemoryStoreOverwrite(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	first := Record{ID: "u1", Name: "Old", Grade: "C", CreatedAt: time.Unix(0, 0)}
	second := Record{ID: "u1", Name: "New", Grade: "A", CreatedAt: time.Unix(100, 0)}

	if err := store.Put(ctx, first); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Put(ctx, second); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := store.FindByID(ctx, "u1")
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if got != second {
		t.Errorf("record = %+v, want overwritten %+v", got, second)
	}
	if store.Len() != 1 {
		t.Errorf("len = %d, want 1 (overwrite, not append)", store.Len())
	}
}
