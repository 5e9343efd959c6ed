package usage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/akolanti/BrandVoice/internal/data/store"
)

type failingStore struct{}

func (failingStore) WordsUsed(context.Context, string, string) (int64, error) {
	return 0, errors.New("redis down")
}
func (failingStore) AddWords(context.Context, string, string, int64) error { return nil }

func TestGate(t *testing.T) {
	ctx := context.Background()
	g := NewGate(store.InitInMemoryUsageStore(), 10)
	g.now = func() time.Time { return time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC) }

	if ok, err := g.Allowed(ctx, "u1", 10); err != nil || !ok {
		t.Fatalf("fresh user should be allowed: ok=%v err=%v", ok, err)
	}
	g.Record(ctx, "u1", "one two three four five six seven eight")

	if ok, _ := g.Allowed(ctx, "u1", 2); !ok {
		t.Error("8 + 2 is within a quota of 10")
	}
	if ok, _ := g.Allowed(ctx, "u1", 3); ok {
		t.Error("8 + 3 exceeds a quota of 10")
	}
	if ok, _ := g.Allowed(ctx, "u2", 3); !ok {
		t.Error("quota is per user")
	}

	g.now = func() time.Time { return time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC) }
	if ok, _ := g.Allowed(ctx, "u1", 10); !ok {
		t.Error("quota resets each month")
	}
}

func TestGate_Disabled(t *testing.T) {
	g := NewGate(failingStore{}, 0)
	if ok, err := g.Allowed(context.Background(), "u1", 1_000_000); !ok || err != nil {
		t.Errorf("disabled gate must allow: ok=%v err=%v", ok, err)
	}
}

func TestGate_StoreError(t *testing.T) {
	g := NewGate(failingStore{}, 10)
	if ok, err := g.Allowed(context.Background(), "u1", 1); ok || err == nil {
		t.Errorf("store failure must deny with error: ok=%v err=%v", ok, err)
	}
}
