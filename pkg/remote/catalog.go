package remote

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	pkgerrors "github.com/verdantlane/storefront-core/pkg/errors"
	"github.com/verdantlane/storefront-core/pkg/types"
)

// FetchProduct loads the catalog reference for a product, including its
// per-product discount attributes and stock level.
func (c *Client) FetchProduct(ctx context.Context, productID string) (*types.ProductSnapshot, error) {
	trimmed := strings.TrimSpace(productID)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	var snapshot types.ProductSnapshot
	if err := c.do(ctx, http.MethodGet, joinURL(c.catalogURL, "product", url.PathEscape(trimmed)), "", nil, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}
