package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeCounter counts per key in process, standing in for the shared Redis
// window.
type fakeCounter struct {
	counts map[string]int64
	err    error
}

func (f *fakeCounter) IncrWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if f.err != nil {
		return 0, 0, f.err
	}
	if f.counts == nil {
		f.counts = map[string]int64{}
	}
	f.counts[key]++
	return f.counts[key], window / 2, nil
}

func TestAllowWithinBudget(t *testing.T) {
	l := NewLimiter(&fakeCounter{}, 3, time.Minute, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if allowed, _ := l.Allow(ctx, "1.2.3.4"); !allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	allowed, retryAfter := l.Allow(ctx, "1.2.3.4")
	if allowed {
		t.Fatal("fourth request should be rejected")
	}
	if retryAfter <= 0 {
		t.Errorf("expected positive retry-after, got %s", retryAfter)
	}
}

func TestAllowKeysAreIndependent(t *testing.T) {
	l := NewLimiter(&fakeCounter{}, 1, time.Minute, nil)
	ctx := context.Background()

	if allowed, _ := l.Allow(ctx, "1.2.3.4"); !allowed {
		t.Fatal("first key should be allowed")
	}
	if allowed, _ := l.Allow(ctx, "5.6.7.8"); !allowed {
		t.Fatal("second key should have its own budget")
	}
	if allowed, _ := l.Allow(ctx, "1.2.3.4"); allowed {
		t.Fatal("first key should now be over budget")
	}
}

func TestAllowFailsOpen(t *testing.T) {
	l := NewLimiter(&fakeCounter{err: errors.New("redis down")}, 1, time.Minute, nil)

	if allowed, _ := l.Allow(context.Background(), "1.2.3.4"); !allowed {
		t.Fatal("store failure must not reject requests")
	}
}

func TestAllowEmptyKey(t *testing.T) {
	l := NewLimiter(&fakeCounter{}, 0, time.Minute, nil)

	if allowed, _ := l.Allow(context.Background(), ""); !allowed {
		t.Fatal("empty key should bypass the limiter")
	}
}
