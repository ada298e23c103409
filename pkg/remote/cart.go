package remote

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/verdantlane/storefront-core/pkg/errors"
	"github.com/verdantlane/storefront-core/pkg/types"
)

// CartLine mirrors one line of the authoritative server cart.
type CartLine struct {
	ID        string                 `json:"id"`
	ProductID string                 `json:"productId"`
	Quantity  int                    `json:"quantity"`
	Product   *types.ProductSnapshot `json:"product,omitempty"`
	CreatedAt time.Time              `json:"createdAt"`
	UpdatedAt time.Time              `json:"updatedAt"`
}

type cartItemPayload struct {
	ProductID string `json:"productId,omitempty"`
	Quantity  int    `json:"quantity"`
}

type clearCartResult struct {
	DeletedCount int `json:"deletedCount"`
}

// FetchCart returns the full authoritative cart for the authenticated user.
func (c *Client) FetchCart(ctx context.Context, token string) ([]CartLine, error) {
	if strings.TrimSpace(token) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "access token is required")
	}
	var lines []CartLine
	if err := c.do(ctx, http.MethodGet, joinURL(c.cartURL, "cart"), token, nil, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// AddCartItem adds a delta quantity for a product to the server cart. The
// response line is returned but callers should re-fetch the full cart rather
// than trust it as the new state.
func (c *Client) AddCartItem(ctx context.Context, token, productID string, quantity int) (*CartLine, error) {
	if strings.TrimSpace(token) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "access token is required")
	}
	payload := cartItemPayload{ProductID: productID, Quantity: quantity}
	var line CartLine
	if err := c.do(ctx, http.MethodPost, joinURL(c.cartURL, "cart"), token, payload, &line); err != nil {
		return nil, err
	}
	return &line, nil
}

// UpdateCartItem sets the absolute quantity of a product on the server cart.
func (c *Client) UpdateCartItem(ctx context.Context, token, productID string, quantity int) (*CartLine, error) {
	if strings.TrimSpace(token) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "access token is required")
	}
	payload := cartItemPayload{Quantity: quantity}
	var line CartLine
	if err := c.do(ctx, http.MethodPatch, joinURL(c.cartURL, "cart", url.PathEscape(productID)), token, payload, &line); err != nil {
		return nil, err
	}
	return &line, nil
}

// RemoveCartItem deletes a product line from the server cart.
func (c *Client) RemoveCartItem(ctx context.Context, token, productID string) error {
	if strings.TrimSpace(token) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "access token is required")
	}
	return c.do(ctx, http.MethodDelete, joinURL(c.cartURL, "cart", url.PathEscape(productID)), token, nil, nil)
}

// ClearCart deletes every line from the server cart and returns the count.
func (c *Client) ClearCart(ctx context.Context, token string) (int, error) {
	if strings.TrimSpace(token) == "" {
		return 0, pkgerrors.New(pkgerrors.CodeUnauthorized, "access token is required")
	}
	var result clearCartResult
	if err := c.do(ctx, http.MethodDelete, joinURL(c.cartURL, "cart"), token, nil, &result); err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}
