package clock_test

import (
	"sync"
	"testing"
	"time"

	"github.com/msomdec/event-rsvp/internal/clock"
)

func TestFixedClock(t *testing.T) {
	pst := time.FixedZone("PST", -8*60*60)
	at := time.Date(2030, 5, 1, 9, 30, 0, 0, pst)

	c := clock.NewFixed(at)
	if !c.Now().Equal(at) {
		t.Fatalf("expected %v, got %v", at, c.Now())
	}
	if c.Now().Location() != time.UTC {
		t.Fatalf("expected UTC, got %v", c.Now().Location())
	}
	if !c.Now().Equal(c.Now()) {
		t.Fatal("fixed clock moved")
	}
}

func TestSystemClock(t *testing.T) {
	before := time.Now()
	got := clock.System.Now()
	if got.Before(before.Add(-time.Second)) || got.Location() != time.UTC {
		t.Fatalf("unexpected system time %v", got)
	}
}

func TestManualClock(t *testing.T) {
	start := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	c := clock.NewManual(start)

	if got := c.Advance(90 * time.Second); !got.Equal(start.Add(90 * time.Second)) {
		t.Fatalf("Advance = %v", got)
	}
	if !c.Now().Equal(start.Add(90 * time.Second)) {
		t.Fatalf("Now = %v", c.Now())
	}

	pst := time.FixedZone("PST", -8*60*60)
	c.Set(time.Date(2030, 2, 1, 4, 0, 0, 0, pst))
	if want := time.Date(2030, 2, 1, 12, 0, 0, 0, time.UTC); !c.Now().Equal(want) || c.Now().Location() != time.UTC {
		t.Fatalf("Set: got %v, want %v in UTC", c.Now(), want)
	}
}

func TestManualClock_Concurrent(t *testing.T) {
	c := clock.NewManual(time.Unix(0, 0))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Advance(time.Second)
			_ = c.Now()
		}()
	}
	wg.Wait()

	if got := c.Now(); !got.Equal(time.Unix(50, 0)) {
		t.Fatalf("after 50 advances got %v", got)
	}
}
