package domain_test

import (
	"errors"
	"testing"

	"github.com/msomdec/event-rsvp/internal/domain"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{"1", 1, false},
		{" 42 ", 42, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"1.5", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := domain.ParseID("event", tt.raw)
		if tt.wantErr {
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Errorf("ParseID(%q): expected ErrInvalidInput, got %v", tt.raw, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseID(%q): unexpected error %v", tt.raw, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseID(%q) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestValidatePage(t *testing.T) {
	tests := []struct {
		name          string
		limit, offset int
		wantErr       bool
	}{
		{"first page", 20, 0, false},
		{"later page", 20, 40, false},
		{"negative offset", 20, -1, true},
		{"zero limit", 0, 0, true},
		{"negative limit", -1, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := domain.ValidatePage(tt.limit, tt.offset)
			if tt.wantErr != (err != nil) {
				t.Fatalf("ValidatePage(%d, %d) = %v, wantErr %v", tt.limit, tt.offset, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestAttendingOrDefault(t *testing.T) {
	yes, no := true, false
	if domain.AttendingOrDefault(nil) {
		t.Error("nil should default to false")
	}
	if !domain.AttendingOrDefault(&yes) {
		t.Error("true should stay true")
	}
	if domain.AttendingOrDefault(&no) {
		t.Error("false should stay false")
	}
}
