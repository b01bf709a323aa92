package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/msomdec/event-rsvp/internal/config"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.DatabasePath != "event-rsvp.db" {
		t.Errorf("expected default database path, got %q", cfg.DatabasePath)
	}
	if !cfg.CookieSecure {
		t.Error("expected secure cookies by default")
	}
	if cfg.BcryptCost != 12 {
		t.Errorf("expected bcrypt cost 12, got %d", cfg.BcryptCost)
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("expected 5s shutdown timeout, got %v", cfg.ShutdownTimeout)
	}
	if cfg.Location().String() != "America/Los_Angeles" {
		t.Errorf("expected America/Los_Angeles, got %v", cfg.Location())
	}
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	if _, err := config.Load(); err == nil {
		t.Fatal("expected an error without JWT_SECRET")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("PORT", "9090")
	t.Setenv("COOKIE_SECURE", "false")
	t.Setenv("BCRYPT_COST", "4")
	t.Setenv("DATABASE_URL", "postgres://localhost/events")
	t.Setenv("DISPLAY_TIMEZONE", "UTC")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9090" || cfg.CookieSecure || cfg.BcryptCost != 4 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.DatabaseURL != "postgres://localhost/events" {
		t.Fatalf("unexpected database url %q", cfg.DatabaseURL)
	}
	if cfg.Location() != time.UTC {
		t.Fatalf("expected UTC, got %v", cfg.Location())
	}
}

func TestValidate(t *testing.T) {
	valid := config.Config{JWTSecret: testSecret, BcryptCost: 12, DisplayTimezone: "UTC"}

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{"valid", func(*config.Config) {}, ""},
		{"short secret", func(c *config.Config) { c.JWTSecret = "short" }, "JWT_SECRET"},
		{"low cost", func(c *config.Config) { c.BcryptCost = 3 }, "BCRYPT_COST"},
		{"high cost", func(c *config.Config) { c.BcryptCost = 15 }, "BCRYPT_COST"},
		{"bad timezone", func(c *config.Config) { c.DisplayTimezone = "Mars/Olympus" }, "DISPLAY_TIMEZONE"},
		{"admin without password", func(c *config.Config) { c.AdminUsername = "admin@example.com" }, "ADMIN_PASSWORD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}
