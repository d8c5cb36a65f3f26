package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/iho/bizdesk/internal/domain"
	"github.com/iho/bizdesk/internal/infrastructure/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Chdir(t.TempDir())

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL == "" {
		t.Fatalf("expected default database URL to be set")
	}

	if cfg.StoreBackend != config.StoreMemory {
		t.Fatalf("expected memory backend by default, got %s", cfg.StoreBackend)
	}

	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default HTTP port 8080, got %s", cfg.HTTPPort)
	}

	if cfg.PageSize != 5 {
		t.Fatalf("expected default page size 5, got %d", cfg.PageSize)
	}

	if cfg.SessionIdleTTL != 30*time.Minute {
		t.Fatalf("expected default idle TTL 30m, got %s", cfg.SessionIdleTTL)
	}

	if cfg.NeedsRedis() {
		t.Fatalf("expected default config to run without redis")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis://example")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DATABASE_TIMEOUT", "45s")
	t.Setenv("IDEMPOTENCY_ENABLED", "true")
	t.Setenv("PAGE_SIZE", "10")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.StoreBackend != config.StorePostgres {
		t.Fatalf("expected postgres backend, got %s", cfg.StoreBackend)
	}

	if cfg.DatabaseURL != "postgres://example" {
		t.Fatalf("expected custom database URL, got %s", cfg.DatabaseURL)
	}

	if cfg.RedisURL != "redis://example" {
		t.Fatalf("expected custom redis URL, got %s", cfg.RedisURL)
	}

	if cfg.HTTPPort != "9090" {
		t.Fatalf("expected HTTP port override, got %s", cfg.HTTPPort)
	}

	if cfg.DatabaseTimeout != 45*time.Second {
		t.Fatalf("expected database timeout override, got %s", cfg.DatabaseTimeout)
	}

	if cfg.PageSize != 10 || !cfg.NeedsRedis() {
		t.Fatalf("expected page size 10 and redis for idempotency, got %d %v", cfg.PageSize, cfg.NeedsRedis())
	}
}

func TestLoadDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bizdesk.env")
	if err := os.WriteFile(path, []byte("STORE_BACKEND=redis\nPAGE_SIZE=7\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	// godotenv never overrides variables that are already set.
	t.Setenv("PAGE_SIZE", "3")
	os.Unsetenv("STORE_BACKEND")
	t.Cleanup(func() { os.Unsetenv("STORE_BACKEND") })

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.StoreBackend != config.StoreRedis {
		t.Fatalf("expected backend from env file, got %s", cfg.StoreBackend)
	}
	if cfg.PageSize != 3 {
		t.Fatalf("expected environment to win over env file, got %d", cfg.PageSize)
	}
}

func TestLoadMissingEnvFile(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Fatalf("expected error for explicit missing env file")
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HTTP_READ_TIMEOUT", "not-a-duration")

	if _, err := config.Load(); err == nil {
		t.Fatalf("expected error for invalid duration")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unknown backend", "STORE_BACKEND", "sqlite"},
		{"zero page size", "PAGE_SIZE", "0"},
		{"negative rate", "RATE_LIMIT_RPS", "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(tt.key, tt.val)

			_, err := config.Load()
			if !errors.Is(err, domain.ErrInvalidConfiguration) {
				t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
			}
		})
	}
}
