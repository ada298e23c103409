package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "storefront"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv  = "STOREFRONT_APP_ENV"
	EnvAppPort = "STOREFRONT_APP_PORT"
)

type Config struct {
	App     AppConfig
	Remote  RemoteConfig
	Profile ProfileConfig
	Session SessionConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Remote.ensureBaseURLs(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" required:"true"`
	Port         string `envconfig:"STOREFRONT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// RemoteConfig points the session core at the marketplace services. A single
// base URL covers the common deployment; per-service overrides win when set.
type RemoteConfig struct {
	BaseURL     string        `envconfig:"STOREFRONT_REMOTE_BASE_URL"`
	CartURL     string        `envconfig:"STOREFRONT_REMOTE_CART_URL"`
	CatalogURL  string        `envconfig:"STOREFRONT_REMOTE_CATALOG_URL"`
	SettingsURL string        `envconfig:"STOREFRONT_REMOTE_SETTINGS_URL"`
	Timeout     time.Duration `envconfig:"STOREFRONT_REMOTE_TIMEOUT" default:"10s"`
}

func (r *RemoteConfig) ensureBaseURLs() error {
	base := strings.TrimRight(strings.TrimSpace(r.BaseURL), "/")
	if r.CartURL == "" {
		r.CartURL = base
	}
	if r.CatalogURL == "" {
		r.CatalogURL = base
	}
	if r.SettingsURL == "" {
		r.SettingsURL = base
	}
	missing := []string{}
	if r.CartURL == "" {
		missing = append(missing, "STOREFRONT_REMOTE_CART_URL")
	}
	if r.CatalogURL == "" {
		missing = append(missing, "STOREFRONT_REMOTE_CATALOG_URL")
	}
	if r.SettingsURL == "" {
		missing = append(missing, "STOREFRONT_REMOTE_SETTINGS_URL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("either STOREFRONT_REMOTE_BASE_URL or %s are required", strings.Join(missing, ", "))
	}
	return nil
}

// ProfileConfig scopes durable guest state to one profile directory.
type ProfileConfig struct {
	Dir           string `envconfig:"STOREFRONT_PROFILE_DIR" default:".storefront"`
	GuestCartFile string `envconfig:"STOREFRONT_PROFILE_GUEST_CART_FILE" default:"guest_cart.json"`
}

// GuestCartPath returns the absolute-ish path of the guest cart document.
func (p ProfileConfig) GuestCartPath() string {
	return filepath.Join(p.Dir, p.GuestCartFile)
}

type SessionConfig struct {
	OpenPanelOnAdd bool `envconfig:"STOREFRONT_SESSION_OPEN_PANEL_ON_ADD" default:"true"`
}
