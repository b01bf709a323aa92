package service_test

import (
	"testing"
	"time"

	"github.com/msomdec/event-rsvp/internal/clock"
	"github.com/msomdec/event-rsvp/internal/service"
)

func newSteppedClock() *clock.Manual {
	return clock.NewManual(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
}

func TestTokenBucket_AllowsUpToCapacity(t *testing.T) {
	tb := service.NewTokenBucket(1, 3, newSteppedClock())

	for i := 0; i < 3; i++ {
		if !tb.Allow("test-key") {
			t.Fatalf("request %d should be allowed (bucket not yet empty)", i+1)
		}
	}
	if tb.Allow("test-key") {
		t.Fatal("4th request should be denied (bucket empty)")
	}
}

func TestTokenBucket_DifferentKeysAreIndependent(t *testing.T) {
	tb := service.NewTokenBucket(1, 1, newSteppedClock())

	if !tb.Allow("ip-a") {
		t.Fatal("ip-a first request should be allowed")
	}
	if tb.Allow("ip-a") {
		t.Fatal("ip-a second request should be denied")
	}
	if !tb.Allow("ip-b") {
		t.Fatal("ip-b first request should be allowed (independent bucket)")
	}
}

func TestTokenBucket_Refills(t *testing.T) {
	clk := newSteppedClock()
	tb := service.NewTokenBucket(0.5, 1, clk)

	if !tb.Allow("k") {
		t.Fatal("first request should be allowed")
	}
	if tb.Allow("k") {
		t.Fatal("second request should be denied")
	}

	clk.Advance(time.Second)
	if tb.Allow("k") {
		t.Fatal("half a token should not be enough")
	}

	clk.Advance(2 * time.Second)
	if !tb.Allow("k") {
		t.Fatal("expected the bucket to have refilled")
	}
}

func TestTokenBucket_ZeroRateNeverRefills(t *testing.T) {
	clk := newSteppedClock()
	tb := service.NewTokenBucket(0, 2, clk)

	tb.Allow("k")
	tb.Allow("k")
	clk.Advance(time.Hour)
	if tb.Allow("k") {
		t.Fatal("a zero-rate bucket should never refill")
	}
}

func TestTokenBucket_Prune(t *testing.T) {
	clk := newSteppedClock()
	tb := service.NewTokenBucket(1, 1, clk)

	tb.Allow("old")
	clk.Advance(15 * time.Minute)
	tb.Allow("fresh")

	if removed := tb.Prune(10 * time.Minute); removed != 1 {
		t.Fatalf("expected 1 pruned bucket, got %d", removed)
	}
	// A pruned key starts with a full bucket again.
	if !tb.Allow("old") {
		t.Fatal("expected pruned key to start full")
	}
}
