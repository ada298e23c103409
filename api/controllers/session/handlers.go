package session

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/verdantlane/storefront-core/api/responses"
	"github.com/verdantlane/storefront-core/api/validators"
	"github.com/verdantlane/storefront-core/internal/globaldiscount"
	sessioncore "github.com/verdantlane/storefront-core/internal/session"
	"github.com/verdantlane/storefront-core/pkg/enums"
	pkgerrors "github.com/verdantlane/storefront-core/pkg/errors"
	"github.com/verdantlane/storefront-core/pkg/logger"
	"github.com/verdantlane/storefront-core/pkg/types"
)

// Sessions is the slice of the cart session manager the handlers consume.
type Sessions interface {
	AddItem(ctx context.Context, productID string, quantity int) error
	UpdateQuantity(ctx context.Context, productID string, quantity int) error
	RemoveItem(ctx context.Context, productID string) error
	Clear(ctx context.Context) error
	Refresh(ctx context.Context) error
	Login(ctx context.Context, token string) error
	Logout(ctx context.Context) error
	Snapshot() sessioncore.State
	PricedLines() []sessioncore.PricedLine
	Totals() sessioncore.Totals
	OpenPanel()
	ClosePanel()
	TogglePanel() bool
}

// Discounts exposes the cached storewide discount configuration.
type Discounts interface {
	Snapshot() globaldiscount.Snapshot
	Refresh(ctx context.Context) error
}

// DiscountUpdater pushes a new storewide discount configuration to the
// settings service.
type DiscountUpdater interface {
	UpdateGlobalDiscount(ctx context.Context, token string, cfg types.GlobalDiscountConfig) (*types.GlobalDiscountConfig, error)
}

// CartFetch returns the current session state with priced lines and totals.
func CartFetch(svc Sessions, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session unavailable"))
			return
		}
		responses.WriteSuccess(w, newCartView(svc))
	}
}

// CartAddItem adds quantity units of a product to the cart.
func CartAddItem(svc Sessions, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session unavailable"))
			return
		}

		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if payload.Quantity == 0 {
			payload.Quantity = 1
		}

		if err := svc.AddItem(r.Context(), payload.ProductID, payload.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartView(svc))
	}
}

// CartUpdateItem sets the absolute quantity of a line; zero removes it.
func CartUpdateItem(svc Sessions, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session unavailable"))
			return
		}

		productID, err := productIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.UpdateQuantity(r.Context(), productID, *payload.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartView(svc))
	}
}

// CartRemoveItem deletes a line. Removing an absent line still succeeds.
func CartRemoveItem(svc Sessions, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session unavailable"))
			return
		}

		productID, err := productIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RemoveItem(r.Context(), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartView(svc))
	}
}

// CartClear empties the cart.
func CartClear(svc Sessions, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session unavailable"))
			return
		}

		if err := svc.Clear(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartView(svc))
	}
}

// CartRefresh reloads the cart from its source of truth.
func CartRefresh(svc Sessions, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session unavailable"))
			return
		}

		if err := svc.Refresh(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartView(svc))
	}
}

// PanelOpen opens the cart panel.
func PanelOpen(svc Sessions, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session unavailable"))
			return
		}
		svc.OpenPanel()
		responses.WriteSuccess(w, panelView{PanelOpen: true})
	}
}

// PanelClose closes the cart panel.
func PanelClose(svc Sessions, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session unavailable"))
			return
		}
		svc.ClosePanel()
		responses.WriteSuccess(w, panelView{PanelOpen: false})
	}
}

// PanelToggle flips the cart panel.
func PanelToggle(svc Sessions, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session unavailable"))
			return
		}
		responses.WriteSuccess(w, panelView{PanelOpen: svc.TogglePanel()})
	}
}

// Login authenticates the session and merges the guest cart into the server
// cart. A partial merge still authenticates; the error reports what failed.
func Login(svc Sessions, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session unavailable"))
			return
		}

		var payload loginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Login(r.Context(), payload.Token); err != nil {
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeMerge {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if logg != nil {
				logg.Warn(r.Context(), "login completed with partial merge")
			}
		}

		responses.WriteSuccess(w, newCartView(svc))
	}
}

// Logout returns the session to guest mode.
func Logout(svc Sessions, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session unavailable"))
			return
		}

		if err := svc.Logout(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartView(svc))
	}
}

// GlobalDiscountFetch returns the cached storewide discount configuration.
func GlobalDiscountFetch(discounts Discounts, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if discounts == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discount provider unavailable"))
			return
		}
		responses.WriteSuccess(w, discounts.Snapshot())
	}
}

// GlobalDiscountRefresh refetches the storewide discount configuration. A
// failed fetch keeps the previous cached value.
func GlobalDiscountRefresh(discounts Discounts, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if discounts == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discount provider unavailable"))
			return
		}

		if err := discounts.Refresh(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, discounts.Snapshot())
	}
}

// GlobalDiscountUpdate replaces the storewide discount configuration through
// the settings service, then refetches it into the cache. Requires a bearer
// token; the settings service enforces who may edit.
func GlobalDiscountUpdate(updater DiscountUpdater, discounts Discounts, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if updater == nil || discounts == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discount provider unavailable"))
			return
		}

		token := bearerToken(r)
		if token == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "access token is required"))
			return
		}

		var payload globalDiscountRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		discountType, err := enums.ParseDiscountType(payload.Type)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid discount type"))
			return
		}

		cfg := types.GlobalDiscountConfig{
			IsActive:      payload.IsActive,
			Type:          discountType,
			Value:         payload.Value,
			MinOrderTotal: payload.MinOrderTotal,
			Label:         payload.Label,
		}

		if _, err := updater.UpdateGlobalDiscount(r.Context(), token, cfg); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := discounts.Refresh(r.Context()); err != nil && logg != nil {
			logg.Warn(r.Context(), "discount cache refresh after update failed")
		}

		responses.WriteSuccess(w, discounts.Snapshot())
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func productIDFromPath(r *http.Request) (string, error) {
	raw := chi.URLParam(r, "productId")
	if raw == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	productID, err := url.PathUnescape(raw)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
	}
	return productID, nil
}
