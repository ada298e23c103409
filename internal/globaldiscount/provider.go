package globaldiscount

import (
	"context"
	"fmt"
	"sync"

	pkgerrors "github.com/verdantlane/storefront-core/pkg/errors"
	"github.com/verdantlane/storefront-core/pkg/logger"
	"github.com/verdantlane/storefront-core/pkg/types"
)

// Fetcher loads the storewide discount configuration from the settings service.
type Fetcher interface {
	FetchGlobalDiscount(ctx context.Context) (*types.GlobalDiscountConfig, error)
}

// Snapshot is the provider's observable state.
type Snapshot struct {
	Config    *types.GlobalDiscountConfig `json:"config"`
	IsLoading bool                        `json:"isLoading"`
	LastError string                      `json:"lastError,omitempty"`
}

// Provider caches the storewide discount configuration. A failed refresh keeps
// the previous cached value and records the error; it never retries on its own.
type Provider struct {
	mu      sync.RWMutex
	fetcher Fetcher
	logg    *logger.Logger

	config  *types.GlobalDiscountConfig
	loading bool
	lastErr string
}

// NewProvider builds a provider backed by the settings service.
func NewProvider(fetcher Fetcher, logg *logger.Logger) (*Provider, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("global discount fetcher required")
	}
	return &Provider{fetcher: fetcher, logg: logg}, nil
}

// Refresh fetches the current configuration into the cache. On failure the
// previous value is retained and the error is surfaced, not retried.
func (p *Provider) Refresh(ctx context.Context) error {
	p.mu.Lock()
	p.loading = true
	p.mu.Unlock()

	cfg, err := p.fetcher.FetchGlobalDiscount(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.loading = false

	if err != nil {
		p.lastErr = err.Error()
		if p.logg != nil {
			p.logg.Warn(p.logg.WithField(ctx, "error", err.Error()), "global discount refresh failed, keeping cached value")
		}
		return pkgerrors.Wrap(pkgerrors.CodeConfig, err, "refresh global discount")
	}

	p.config = cfg
	p.lastErr = ""
	return nil
}

// Config returns a copy of the cached configuration, or nil before the first
// successful refresh.
func (p *Provider) Config() *types.GlobalDiscountConfig {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.config == nil {
		return nil
	}
	copied := *p.config
	return &copied
}

// Snapshot returns the cached configuration together with loading/error state.
func (p *Provider) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	snap := Snapshot{IsLoading: p.loading, LastError: p.lastErr}
	if p.config != nil {
		copied := *p.config
		snap.Config = &copied
	}
	return snap
}
