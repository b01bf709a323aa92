package telemetry_test

import (
	"context"
	"testing"

	"github.com/msomdec/event-rsvp/internal/telemetry"
)

func TestSetup_NoEndpointIsNoop(t *testing.T) {
	shutdown, err := telemetry.Setup(context.Background(), "event-rsvp", "")
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}
