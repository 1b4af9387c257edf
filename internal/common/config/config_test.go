package config

import (
	"errors"
	"testing"
	"time"

	"github.com/avlasov/userhub/internal/common/constants"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/userhub")
	t.Setenv("OPAQUE_ID_SALT", "a-long-enough-salt-value")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.HTTPPort != constants.DefaultHTTPPort {
		t.Errorf("expected default port, got %s", cfg.HTTPPort)
	}
	if cfg.OpaqueID.MinLength != constants.DefaultOpaqueIDMinLen {
		t.Errorf("expected default min length, got %d", cfg.OpaqueID.MinLength)
	}
	if cfg.OpaqueID.Alphabet != constants.DefaultOpaqueIDAlphabet {
		t.Errorf("expected default alphabet, got %s", cfg.OpaqueID.Alphabet)
	}
	if cfg.RequestTimeout != constants.DefaultRequestTimeout {
		t.Errorf("expected default request timeout, got %v", cfg.RequestTimeout)
	}
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("OPAQUE_ID_MIN_LENGTH", "12")
	t.Setenv("REQUEST_TIMEOUT", "2s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.HTTPPort != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.HTTPPort)
	}
	if cfg.OpaqueID.MinLength != 12 {
		t.Errorf("expected min length 12, got %d", cfg.OpaqueID.MinLength)
	}
	if cfg.RequestTimeout != 2*time.Second {
		t.Errorf("expected 2s timeout, got %v", cfg.RequestTimeout)
	}
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("OPAQUE_ID_SALT", "a-long-enough-salt-value")

	_, err := Load()
	if !errors.Is(err, ErrMissingRequiredEnv) {
		t.Fatalf("expected ErrMissingRequiredEnv, got %v", err)
	}
}

func TestLoad_MissingSalt(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/userhub")
	t.Setenv("OPAQUE_ID_SALT", "")

	_, err := Load()
	if !errors.Is(err, ErrMissingRequiredEnv) {
		t.Fatalf("expected ErrMissingRequiredEnv, got %v", err)
	}
}

func TestLoad_SaltTooShort(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/userhub")
	t.Setenv("OPAQUE_ID_SALT", "short")

	_, err := Load()
	if !errors.Is(err, ErrOpaqueIDSaltTooShort) {
		t.Fatalf("expected ErrOpaqueIDSaltTooShort, got %v", err)
	}
}
