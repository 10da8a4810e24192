package lastseen

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMemoryStore_GetMissing(t *testing.T) {
	s := NewMemoryStore()

	_, ok, err := s.Get(context.Background(), "reorder:1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Errorf("expected no entry for unknown key")
	}
}

func TestMemoryStore_SetOverwrites(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	first := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	_ = s.Set(ctx, "k", first)
	_ = s.Set(ctx, "k", second)

	got, ok, _ := s.Get(ctx, "k")
	if !ok || !got.Equal(second) {
		t.Errorf("expected %v, got %v (ok=%v)", second, got, ok)
	}

	s.Clear()
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Errorf("expected entry to be cleared")
	}
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Set(ctx, "shared", now)
			_, _, _ = s.Get(ctx, "shared")
		}()
	}
	wg.Wait()

	if _, ok, _ := s.Get(ctx, "shared"); !ok {
		t.Errorf("expected shared key to be present")
	}
}
