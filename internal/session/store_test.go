package session

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStorePutGetDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)

	s := &Session{
		ID:        "abc",
		CreatedAt: time.Now(),
		Dir:       "/tmp/staging/abc",
		HotelName: "Seaside Resort",
		Files:     map[string]string{"hotels": "/tmp/staging/abc/hotels.xlsx"},
	}
	if err := store.Put(ctx, s); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := store.Get(ctx, "abc")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.HotelName != "Seaside Resort" || got.Files["hotels"] == "" {
		t.Fatalf("unexpected session: %+v", got)
	}

	if err := store.Delete(ctx, "abc"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, "abc"); err != ErrNotFound {
		t.Fatalf("Get after delete: err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreUnknownID(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	if _, err := store.Get(context.Background(), "nope"); err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	// Deleting an unknown id is a no-op, not an error.
	if err := store.Delete(context.Background(), "nope"); err != nil {
		t.Fatalf("Delete unknown: %v", err)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)

	now := time.Now()
	store.now = func() time.Time { return now }

	if err := store.Put(ctx, &Session{ID: "old"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := store.Get(ctx, "old"); err != nil {
		t.Fatalf("Get before expiry: %v", err)
	}

	now = now.Add(time.Hour + time.Minute)
	if _, err := store.Get(ctx, "old"); err != ErrNotFound {
		t.Fatalf("Get after expiry: err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStorePutRestartsTTL(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)

	now := time.Now()
	store.now = func() time.Time { return now }

	store.Put(ctx, &Session{ID: "s", Step: 1})
	now = now.Add(45 * time.Minute)
	store.Put(ctx, &Session{ID: "s", Step: 2})
	now = now.Add(45 * time.Minute)

	got, err := store.Get(ctx, "s")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Step != 2 {
		t.Fatalf("Step = %d, want 2", got.Step)
	}
}
