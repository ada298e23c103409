package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Success(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.App.Env != "production" {
		t.Fatalf("expected App.Env to be production, got %q", cfg.App.Env)
	}

	if cfg.Remote.CartURL != "https://api.example.test" {
		t.Fatalf("expected cart URL to inherit base, got %q", cfg.Remote.CartURL)
	}

	if got := cfg.Remote.Timeout; got != 10*time.Second {
		t.Fatalf("expected default remote timeout 10s, got %v", got)
	}

	want := filepath.Join(".storefront", "guest_cart.json")
	if got := cfg.Profile.GuestCartPath(); got != want {
		t.Fatalf("unexpected guest cart path %q", got)
	}
}

func TestLoad_PerServiceOverrideWins(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv("STOREFRONT_REMOTE_CATALOG_URL", "https://catalog.example.test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.Remote.CatalogURL != "https://catalog.example.test" {
		t.Fatalf("expected catalog override, got %q", cfg.Remote.CatalogURL)
	}
	if cfg.Remote.CartURL != "https://api.example.test" {
		t.Fatalf("expected cart URL to keep base, got %q", cfg.Remote.CartURL)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv(EnvAppEnv); err != nil {
		t.Fatalf("failed to unset %s: %v", EnvAppEnv, err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected error when required config is missing")
	}
}

func TestLoad_MissingRemoteURLs(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv("STOREFRONT_REMOTE_BASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when no remote URL is configured")
	}
}

func TestIsProd(t *testing.T) {
	cfg := AppConfig{Env: "Production"}
	if !cfg.IsProd() {
		t.Fatal("expected case-insensitive prod match")
	}
	if cfg.IsDev() {
		t.Fatal("production env should not report dev")
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv(EnvAppEnv, "production")
	t.Setenv(EnvAppPort, "8080")
	t.Setenv("STOREFRONT_REMOTE_BASE_URL", "https://api.example.test")
}
