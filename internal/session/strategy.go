package session

import (
	"context"

	"go.uber.org/multierr"

	"github.com/verdantlane/storefront-core/internal/localstore"
	pkgerrors "github.com/verdantlane/storefront-core/pkg/errors"
	"github.com/verdantlane/storefront-core/pkg/remote"
	"github.com/verdantlane/storefront-core/pkg/types"
)

// CartService is the slice of the marketplace cart API the session consumes.
type CartService interface {
	FetchCart(ctx context.Context, token string) ([]remote.CartLine, error)
	AddCartItem(ctx context.Context, token, productID string, quantity int) (*remote.CartLine, error)
	UpdateCartItem(ctx context.Context, token, productID string, quantity int) (*remote.CartLine, error)
	RemoveCartItem(ctx context.Context, token, productID string) error
	ClearCart(ctx context.Context, token string) (int, error)
}

// ProductLoader resolves catalog snapshots for line enrichment.
type ProductLoader interface {
	FetchProduct(ctx context.Context, productID string) (*types.ProductSnapshot, error)
}

// GuestStore is the durable local guest cart. The guest strategy mutates it;
// authenticated operations mirror the refreshed server cart into it so logout
// resumes from the last synced state.
type GuestStore interface {
	ReadAll() []localstore.Line
	WriteAll(lines []localstore.Line)
	Upsert(productID string, deltaQuantity int)
	SetQuantity(productID string, quantity int)
	Remove(productID string)
	Clear()
}

// strategy carries out cart mutations for one session mode and returns the
// resulting authoritative lines. An error carrying CodeEnrichment signals a
// degraded result: the lines are still valid, some just lack their snapshot.
type strategy interface {
	Add(ctx context.Context, productID string, quantity int) ([]Line, error)
	Update(ctx context.Context, productID string, quantity int) ([]Line, error)
	Remove(ctx context.Context, productID string) ([]Line, error)
	Clear(ctx context.Context) ([]Line, error)
	Refresh(ctx context.Context) ([]Line, error)
}

// guestStrategy keeps the cart in the local document and never requires the
// network for the mutation itself; only line enrichment reaches the catalog.
type guestStrategy struct {
	store    GuestStore
	products ProductLoader
}

func (g *guestStrategy) Add(ctx context.Context, productID string, quantity int) ([]Line, error) {
	g.store.Upsert(productID, quantity)
	return g.rebuild(ctx, false)
}

func (g *guestStrategy) Update(ctx context.Context, productID string, quantity int) ([]Line, error) {
	g.store.SetQuantity(productID, quantity)
	return g.rebuild(ctx, false)
}

func (g *guestStrategy) Remove(ctx context.Context, productID string) ([]Line, error) {
	g.store.Remove(productID)
	return g.rebuild(ctx, false)
}

func (g *guestStrategy) Clear(ctx context.Context) ([]Line, error) {
	g.store.Clear()
	return []Line{}, nil
}

// Refresh re-reads the durable store and re-enriches every line. Lines whose
// catalog fetch fails are dropped from the view rather than left dangling; the
// store keeps them for the next attempt.
func (g *guestStrategy) Refresh(ctx context.Context) ([]Line, error) {
	return g.rebuild(ctx, true)
}

// rebuild turns the durable store into session lines, enriching each with its
// catalog snapshot. A mutation keeps an unresolved line without its snapshot
// so the just-added item stays visible; a refresh drops it.
func (g *guestStrategy) rebuild(ctx context.Context, dropUnresolved bool) ([]Line, error) {
	stored := g.store.ReadAll()
	lines := make([]Line, 0, len(stored))
	var enrichErr error
	for _, entry := range stored {
		line := Line{
			ID:        guestLineID(entry.ProductID),
			ProductID: entry.ProductID,
			Quantity:  entry.Quantity,
		}
		product, err := g.products.FetchProduct(ctx, entry.ProductID)
		if err != nil {
			enrichErr = multierr.Append(enrichErr, err)
			if dropUnresolved {
				continue
			}
		} else {
			line.Product = product
		}
		lines = append(lines, line)
	}
	if enrichErr != nil {
		return lines, pkgerrors.Wrap(pkgerrors.CodeEnrichment, enrichErr, "enriching guest cart lines")
	}
	return lines, nil
}

// authStrategy proposes each mutation to the cart service, then refetches the
// full cart so the server stays the single source of truth.
type authStrategy struct {
	token    string
	carts    CartService
	products ProductLoader
}

func (a *authStrategy) Add(ctx context.Context, productID string, quantity int) ([]Line, error) {
	if _, err := a.carts.AddCartItem(ctx, a.token, productID, quantity); err != nil {
		return nil, err
	}
	return a.Refresh(ctx)
}

func (a *authStrategy) Update(ctx context.Context, productID string, quantity int) ([]Line, error) {
	if _, err := a.carts.UpdateCartItem(ctx, a.token, productID, quantity); err != nil {
		return nil, err
	}
	return a.Refresh(ctx)
}

func (a *authStrategy) Remove(ctx context.Context, productID string) ([]Line, error) {
	if err := a.carts.RemoveCartItem(ctx, a.token, productID); err != nil {
		return nil, err
	}
	return a.Refresh(ctx)
}

func (a *authStrategy) Clear(ctx context.Context) ([]Line, error) {
	if _, err := a.carts.ClearCart(ctx, a.token); err != nil {
		return nil, err
	}
	return a.Refresh(ctx)
}

func (a *authStrategy) Refresh(ctx context.Context) ([]Line, error) {
	fetched, err := a.carts.FetchCart(ctx, a.token)
	if err != nil {
		return nil, err
	}

	lines := make([]Line, 0, len(fetched))
	var enrichErr error
	for _, remoteLine := range fetched {
		line := fromRemoteLine(remoteLine)
		if line.Product == nil {
			product, err := a.products.FetchProduct(ctx, remoteLine.ProductID)
			if err != nil {
				enrichErr = multierr.Append(enrichErr, err)
			} else {
				line.Product = product
			}
		}
		lines = append(lines, line)
	}
	if enrichErr != nil {
		return lines, pkgerrors.Wrap(pkgerrors.CodeEnrichment, enrichErr, "enriching cart lines")
	}
	return lines, nil
}

func fromRemoteLine(remoteLine remote.CartLine) Line {
	return Line{
		ID:        remoteLine.ID,
		ProductID: remoteLine.ProductID,
		Quantity:  remoteLine.Quantity,
		Product:   remoteLine.Product,
		CreatedAt: remoteLine.CreatedAt,
		UpdatedAt: remoteLine.UpdatedAt,
	}
}
