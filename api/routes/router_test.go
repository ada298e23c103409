package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/verdantlane/storefront-core/internal/globaldiscount"
	sessioncore "github.com/verdantlane/storefront-core/internal/session"
	"github.com/verdantlane/storefront-core/pkg/config"
	"github.com/verdantlane/storefront-core/pkg/enums"
	pkgerrors "github.com/verdantlane/storefront-core/pkg/errors"
	"github.com/verdantlane/storefront-core/pkg/logger"
	"github.com/verdantlane/storefront-core/pkg/types"
)

type stubSessions struct {
	loginErr  error
	panelOpen bool
	addCalls  int
}

func (s *stubSessions) AddItem(ctx context.Context, productID string, quantity int) error {
	s.addCalls++
	return nil
}

func (s *stubSessions) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	return nil
}

func (s *stubSessions) RemoveItem(ctx context.Context, productID string) error { return nil }
func (s *stubSessions) Clear(ctx context.Context) error                        { return nil }
func (s *stubSessions) Refresh(ctx context.Context) error                      { return nil }

func (s *stubSessions) Login(ctx context.Context, token string) error { return s.loginErr }
func (s *stubSessions) Logout(ctx context.Context) error              { return nil }

func (s *stubSessions) Snapshot() sessioncore.State {
	return sessioncore.State{Mode: enums.SessionModeGuest, Lines: []sessioncore.Line{}, PanelOpen: s.panelOpen}
}

func (s *stubSessions) PricedLines() []sessioncore.PricedLine { return []sessioncore.PricedLine{} }
func (s *stubSessions) Totals() sessioncore.Totals            { return sessioncore.Totals{} }

func (s *stubSessions) OpenPanel()  { s.panelOpen = true }
func (s *stubSessions) ClosePanel() { s.panelOpen = false }
func (s *stubSessions) TogglePanel() bool {
	s.panelOpen = !s.panelOpen
	return s.panelOpen
}

type stubDiscounts struct {
	refreshErr error
}

func (s *stubDiscounts) Snapshot() globaldiscount.Snapshot { return globaldiscount.Snapshot{} }
func (s *stubDiscounts) Refresh(ctx context.Context) error { return s.refreshErr }

type stubUpdater struct {
	updates int
}

func (s *stubUpdater) UpdateGlobalDiscount(ctx context.Context, token string, cfg types.GlobalDiscountConfig) (*types.GlobalDiscountConfig, error) {
	s.updates++
	return &cfg, nil
}

func testConfig() *config.Config {
	return &config.Config{App: config.AppConfig{Env: "test", Port: "0"}}
}

func newTestRouter(sessions *stubSessions, discounts *stubDiscounts) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(testConfig(), logg, sessions, discounts, &stubUpdater{}, prometheus.NewRegistry())
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(&stubSessions{}, &stubDiscounts{})
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for liveness got %d", resp.Code)
	}
}

func TestMetricsExposed(t *testing.T) {
	router := newTestRouter(&stubSessions{}, &stubDiscounts{})
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for metrics got %d", resp.Code)
	}
}

func TestCartFetch(t *testing.T) {
	router := newTestRouter(&stubSessions{}, &stubDiscounts{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/session/cart", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for cart fetch got %d", resp.Code)
	}
}

func TestAddItemRejectsBadJSON(t *testing.T) {
	router := newTestRouter(&stubSessions{}, &stubDiscounts{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/session/cart/items", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid payload got %d", resp.Code)
	}
}

func TestAddItemDefaultsQuantityToOne(t *testing.T) {
	sessions := &stubSessions{}
	router := newTestRouter(sessions, &stubDiscounts{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/session/cart/items", strings.NewReader(`{"productId":"sku-1"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for omitted quantity got %d", resp.Code)
	}
	if sessions.addCalls != 1 {
		t.Fatalf("expected one add call got %d", sessions.addCalls)
	}
}

func TestAddItemRejectsNegativeQuantity(t *testing.T) {
	router := newTestRouter(&stubSessions{}, &stubDiscounts{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/session/cart/items", strings.NewReader(`{"productId":"sku-1","quantity":-2}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative quantity got %d", resp.Code)
	}
}

func TestAddItemAcceptsGoodPayload(t *testing.T) {
	sessions := &stubSessions{}
	router := newTestRouter(sessions, &stubDiscounts{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/session/cart/items", strings.NewReader(`{"productId":"sku-1","quantity":2}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for valid payload got %d", resp.Code)
	}
	if sessions.addCalls != 1 {
		t.Fatalf("expected one add call got %d", sessions.addCalls)
	}
}

func TestUpdateItemRequiresQuantityField(t *testing.T) {
	router := newTestRouter(&stubSessions{}, &stubDiscounts{})
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/session/cart/items/sku-1", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing quantity got %d", resp.Code)
	}
}

func TestRemoveItem(t *testing.T) {
	router := newTestRouter(&stubSessions{}, &stubDiscounts{})
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/session/cart/items/sku-1", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for item removal got %d", resp.Code)
	}
}

func TestPanelToggle(t *testing.T) {
	sessions := &stubSessions{}
	router := newTestRouter(sessions, &stubDiscounts{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/session/panel/toggle", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for panel toggle got %d", resp.Code)
	}
	if !sessions.panelOpen {
		t.Fatalf("expected panel to be open after toggle")
	}
}

func TestLoginRejectsMissingToken(t *testing.T) {
	router := newTestRouter(&stubSessions{}, &stubDiscounts{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/session/login", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing token got %d", resp.Code)
	}
}

func TestLoginMapsUnauthorized(t *testing.T) {
	sessions := &stubSessions{loginErr: pkgerrors.New(pkgerrors.CodeUnauthorized, "access token expired")}
	router := newTestRouter(sessions, &stubDiscounts{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/session/login", strings.NewReader(`{"token":"abc"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for rejected token got %d", resp.Code)
	}
}

func TestLoginPartialMergeStillSucceeds(t *testing.T) {
	sessions := &stubSessions{loginErr: pkgerrors.New(pkgerrors.CodeMerge, "1 line failed")}
	router := newTestRouter(sessions, &stubDiscounts{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/session/login", strings.NewReader(`{"token":"abc"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for partial merge got %d", resp.Code)
	}
}

func TestGlobalDiscountUpdateRequiresToken(t *testing.T) {
	router := newTestRouter(&stubSessions{}, &stubDiscounts{})
	body := `{"isActive":true,"type":"percentage","value":20}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/session/global-discount", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestGlobalDiscountUpdateWithToken(t *testing.T) {
	updater := &stubUpdater{}
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	router := NewRouter(testConfig(), logg, &stubSessions{}, &stubDiscounts{}, updater, prometheus.NewRegistry())

	body := `{"isActive":true,"type":"percentage","value":20,"label":"Storewide"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/session/global-discount", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer admin-token")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for discount update got %d", resp.Code)
	}
	if updater.updates != 1 {
		t.Fatalf("expected one update call got %d", updater.updates)
	}
}

func TestGlobalDiscountRefreshMapsConfigError(t *testing.T) {
	discounts := &stubDiscounts{refreshErr: pkgerrors.New(pkgerrors.CodeConfig, "settings unreachable")}
	router := newTestRouter(&stubSessions{}, discounts)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/session/global-discount/refresh", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 for failed refresh got %d", resp.Code)
	}
}
