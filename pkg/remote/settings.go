package remote

import (
	"context"
	"net/http"
	"strings"

	pkgerrors "github.com/verdantlane/storefront-core/pkg/errors"
	"github.com/verdantlane/storefront-core/pkg/types"
)

// FetchGlobalDiscount loads the storewide discount configuration.
func (c *Client) FetchGlobalDiscount(ctx context.Context) (*types.GlobalDiscountConfig, error) {
	var cfg types.GlobalDiscountConfig
	if err := c.do(ctx, http.MethodGet, joinURL(c.settingsURL, "settings", "global-discount"), "", nil, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// UpdateGlobalDiscount replaces the storewide discount configuration. Admin
// tooling owns the editing flow; this client only carries the payload.
func (c *Client) UpdateGlobalDiscount(ctx context.Context, token string, cfg types.GlobalDiscountConfig) (*types.GlobalDiscountConfig, error) {
	if strings.TrimSpace(token) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "access token is required")
	}
	var updated types.GlobalDiscountConfig
	if err := c.do(ctx, http.MethodPut, joinURL(c.settingsURL, "settings", "global-discount"), token, cfg, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}
