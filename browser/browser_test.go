package browser

import (
	"context"
	"testing"
	"time"
)

func TestOpDeadline_PageTimeoutBoundsEveryOperation(t *testing.T) {
	now := time.Now()

	// A generous caller budget must not let a single operation run past the
	// page timeout.
	ctx, cancel := context.WithDeadline(context.Background(), now.Add(time.Hour))
	defer cancel()

	deadline, ok := opDeadline(ctx, 30*time.Second, now)
	if !ok {
		t.Fatal("expected a deadline")
	}
	if want := now.Add(30 * time.Second); !deadline.Equal(want) {
		t.Errorf("deadline = %v, want %v (page timeout wins over the hour budget)", deadline, want)
	}
}

func TestOpDeadline_SoonerCallerDeadlineWins(t *testing.T) {
	now := time.Now()
	ctx, cancel := context.WithDeadline(context.Background(), now.Add(5*time.Second))
	defer cancel()

	deadline, ok := opDeadline(ctx, 30*time.Second, now)
	if !ok {
		t.Fatal("expected a deadline")
	}
	if want := now.Add(5 * time.Second); !deadline.Equal(want) {
		t.Errorf("deadline = %v, want %v", deadline, want)
	}
}

func TestOpDeadline_NoPageTimeoutDefersToCaller(t *testing.T) {
	now := time.Now()

	if _, ok := opDeadline(context.Background(), 0, now); ok {
		t.Error("no caller deadline and no page timeout should yield none")
	}

	ctx, cancel := context.WithDeadline(context.Background(), now.Add(time.Minute))
	defer cancel()
	deadline, ok := opDeadline(ctx, 0, now)
	if !ok || !deadline.Equal(now.Add(time.Minute)) {
		t.Errorf("deadline = %v ok=%v, want caller's deadline", deadline, ok)
	}
}

func TestOpDeadline_NoCallerDeadlineStillBounded(t *testing.T) {
	now := time.Now()
	deadline, ok := opDeadline(context.Background(), 10*time.Second, now)
	if !ok || !deadline.Equal(now.Add(10*time.Second)) {
		t.Errorf("deadline = %v ok=%v, want now+10s", deadline, ok)
	}
}
