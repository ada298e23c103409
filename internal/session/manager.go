package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/verdantlane/storefront-core/internal/localstore"
	"github.com/verdantlane/storefront-core/internal/pricing"
	"github.com/verdantlane/storefront-core/pkg/enums"
	pkgerrors "github.com/verdantlane/storefront-core/pkg/errors"
	"github.com/verdantlane/storefront-core/pkg/logger"
	"github.com/verdantlane/storefront-core/pkg/metrics"
	"github.com/verdantlane/storefront-core/pkg/types"
)

// DiscountSource supplies the cached storewide discount configuration.
type DiscountSource interface {
	Config() *types.GlobalDiscountConfig
}

// ManagerConfig wires the manager's collaborators.
type ManagerConfig struct {
	Store     GuestStore
	Carts     CartService
	Products  ProductLoader
	Discounts DiscountSource
	Logger    *logger.Logger
	Metrics   *metrics.CartMetrics

	// OpenPanelOnAdd opens the cart panel after a successful add.
	OpenPanelOnAdd bool

	// Now overrides the clock, primarily for tests.
	Now func() time.Time
}

// Manager owns one cart session. It starts in guest mode against the local
// store and switches to the server cart after Login. One mutation runs at a
// time; reads observe the last committed state, including while a mutation or
// login merge is still in flight.
type Manager struct {
	store     GuestStore
	carts     CartService
	products  ProductLoader
	discounts DiscountSource
	logg      *logger.Logger
	metrics   *metrics.CartMetrics

	openPanelOnAdd bool
	now            func() time.Time

	// opMu serializes mutations and mode transitions. stateMu guards the
	// observable state so reads never block behind a slow mutation.
	opMu    sync.Mutex
	stateMu sync.RWMutex
	state   State
	token   string
}

// NewManager builds a session manager starting in guest mode.
func NewManager(cfg ManagerConfig) (*Manager, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("guest store is required")
	}
	if cfg.Carts == nil {
		return nil, fmt.Errorf("cart service is required")
	}
	if cfg.Products == nil {
		return nil, fmt.Errorf("product loader is required")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Manager{
		store:          cfg.Store,
		carts:          cfg.Carts,
		products:       cfg.Products,
		discounts:      cfg.Discounts,
		logg:           cfg.Logger,
		metrics:        cfg.Metrics,
		openPanelOnAdd: cfg.OpenPanelOnAdd,
		now:            cfg.Now,
		state: State{
			Mode:  enums.SessionModeGuest,
			Lines: []Line{},
		},
	}, nil
}

// AddItem adds quantity units of a product to the cart.
func (m *Manager) AddItem(ctx context.Context, productID string, quantity int) error {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	err := m.run(ctx, "add_item", func(ctx context.Context, strat strategy) ([]Line, error) {
		return strat.Add(ctx, productID, quantity)
	})
	if err != nil {
		return err
	}

	if m.openPanelOnAdd {
		m.stateMu.Lock()
		m.state.PanelOpen = true
		m.stateMu.Unlock()
	}
	return nil
}

// UpdateQuantity sets the absolute quantity of a line. A non-positive quantity
// removes the line; updating a missing line is a no-op in guest mode.
func (m *Manager) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity <= 0 {
		return m.RemoveItem(ctx, productID)
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	return m.run(ctx, "update_quantity", func(ctx context.Context, strat strategy) ([]Line, error) {
		return strat.Update(ctx, productID, quantity)
	})
}

// RemoveItem deletes a line. Removing an absent line succeeds.
func (m *Manager) RemoveItem(ctx context.Context, productID string) error {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	return m.run(ctx, "remove_item", func(ctx context.Context, strat strategy) ([]Line, error) {
		return strat.Remove(ctx, productID)
	})
}

// Clear empties the cart.
func (m *Manager) Clear(ctx context.Context) error {
	return m.run(ctx, "clear", func(ctx context.Context, strat strategy) ([]Line, error) {
		return strat.Clear(ctx)
	})
}

// Refresh reloads the cart from its source of truth.
func (m *Manager) Refresh(ctx context.Context) error {
	return m.run(ctx, "refresh", func(ctx context.Context, strat strategy) ([]Line, error) {
		return strat.Refresh(ctx)
	})
}

// run executes one mutation under the operation lock and commits its result.
func (m *Manager) run(ctx context.Context, operation string, fn func(context.Context, strategy) ([]Line, error)) error {
	start := m.now()
	m.opMu.Lock()
	defer m.opMu.Unlock()

	mode := m.Mode()
	m.setLoading(true)
	lines, err := fn(ctx, m.strategyFor(mode))
	commitErr := m.commit(lines, err)
	if commitErr == nil && mode == enums.SessionModeAuthenticated {
		m.mirrorToStore(lines)
	}

	outcome := "success"
	switch {
	case commitErr != nil:
		outcome = "error"
	case err != nil:
		outcome = "degraded"
	}
	m.metrics.IncOperation(operation, mode.String(), outcome)
	m.metrics.ObserveDuration(operation, m.now().Sub(start))

	if commitErr != nil && m.logg != nil {
		m.logg.Error(m.logg.WithOperation(ctx, operation), "cart operation failed", commitErr)
	}
	return commitErr
}

func (m *Manager) strategyFor(mode enums.SessionMode) strategy {
	if mode == enums.SessionModeAuthenticated {
		return &authStrategy{token: m.token, carts: m.carts, products: m.products}
	}
	return &guestStrategy{store: m.store, products: m.products}
}

func (m *Manager) setLoading(loading bool) {
	m.stateMu.Lock()
	m.state.IsLoading = loading
	m.stateMu.Unlock()
}

// commit applies an operation result. A CodeEnrichment error degrades the
// commit: the lines land, the error is recorded, the operation still succeeds.
func (m *Manager) commit(lines []Line, err error) error {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	m.state.IsLoading = false

	if err != nil {
		m.state.LastError = err.Error()
		typed := pkgerrors.As(err)
		if typed != nil && typed.Code() == pkgerrors.CodeEnrichment {
			m.state.Lines = cloneLines(lines)
			return nil
		}
		return err
	}

	m.state.Lines = cloneLines(lines)
	m.state.LastError = ""
	return nil
}

// mirrorToStore replaces the local document with the committed server lines,
// keeping it a cache of the last synced cart so logout can resume from it.
func (m *Manager) mirrorToStore(lines []Line) {
	stored := make([]localstore.Line, 0, len(lines))
	for _, line := range lines {
		stored = append(stored, localstore.Line{ProductID: line.ProductID, Quantity: line.Quantity})
	}
	m.store.WriteAll(stored)
}

// Mode reports the current session mode.
func (m *Manager) Mode() enums.SessionMode {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return m.state.Mode
}

// Snapshot returns a deep copy of the observable session state.
func (m *Manager) Snapshot() State {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	snap := m.state
	snap.Lines = cloneLines(m.state.Lines)
	return snap
}

// QuantityOf returns the quantity of a product in the current lines, 0 when
// absent. In guest mode an absent line falls back to the durable store, which
// covers the window where a mutation is durable but not yet enriched into the
// session lines.
func (m *Manager) QuantityOf(productID string) int {
	m.stateMu.RLock()
	mode := m.state.Mode
	for _, line := range m.state.Lines {
		if line.ProductID == productID {
			m.stateMu.RUnlock()
			return line.Quantity
		}
	}
	m.stateMu.RUnlock()

	if mode == enums.SessionModeGuest {
		for _, line := range m.store.ReadAll() {
			if line.ProductID == productID {
				return line.Quantity
			}
		}
	}
	return 0
}

// Contains reports whether a line exists for the product.
func (m *Manager) Contains(productID string) bool {
	return m.QuantityOf(productID) > 0
}

// OpenPanel opens the cart panel.
func (m *Manager) OpenPanel() {
	m.setPanel(true)
}

// ClosePanel closes the cart panel.
func (m *Manager) ClosePanel() {
	m.setPanel(false)
}

// TogglePanel flips the cart panel and reports the new state.
func (m *Manager) TogglePanel() bool {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	m.state.PanelOpen = !m.state.PanelOpen
	return m.state.PanelOpen
}

func (m *Manager) setPanel(open bool) {
	m.stateMu.Lock()
	m.state.PanelOpen = open
	m.stateMu.Unlock()
}

// PricedLine pairs a cart line with its resolved price.
type PricedLine struct {
	Line
	Pricing *pricing.Quote `json:"pricing,omitempty"`
}

// PricedLines resolves the effective price of every current line. Lines
// missing their catalog snapshot carry no pricing.
func (m *Manager) PricedLines() []PricedLine {
	m.stateMu.RLock()
	lines := cloneLines(m.state.Lines)
	m.stateMu.RUnlock()

	now := m.now()
	global := m.effectiveGlobal(lines)

	priced := make([]PricedLine, 0, len(lines))
	for _, line := range lines {
		entry := PricedLine{Line: line}
		if line.Product != nil {
			quote := pricing.Resolve(*line.Product, global, now)
			entry.Pricing = &quote
		}
		priced = append(priced, entry)
	}
	return priced
}

// Totals sums the priced lines. Lines missing their snapshot count toward the
// item count but contribute nothing to the money totals.
func (m *Manager) Totals() Totals {
	m.stateMu.RLock()
	lines := cloneLines(m.state.Lines)
	m.stateMu.RUnlock()

	now := m.now()
	global := m.effectiveGlobal(lines)

	var totals Totals
	subtotal := decimal.Zero
	discount := decimal.Zero
	total := decimal.Zero
	for _, line := range lines {
		totals.ItemCount += line.Quantity
		if line.Product == nil {
			continue
		}
		quote := pricing.Resolve(*line.Product, global, now)
		qty := decimal.NewFromInt(int64(line.Quantity))
		subtotal = subtotal.Add(decimal.NewFromFloat(quote.BasePrice).Mul(qty))
		discount = discount.Add(decimal.NewFromFloat(quote.DiscountAmount).Mul(qty))
		total = total.Add(decimal.NewFromFloat(quote.CurrentPrice).Mul(qty))
		if quote.Source == enums.PricingSourceGlobal {
			totals.GlobalApplied = true
		}
	}
	totals.Subtotal = subtotal.Round(2).InexactFloat64()
	totals.DiscountTotal = discount.Round(2).InexactFloat64()
	totals.Total = total.Round(2).InexactFloat64()
	return totals
}

// effectiveGlobal gates the storewide discount on its minimum order threshold,
// evaluated against the undiscounted basket total.
func (m *Manager) effectiveGlobal(lines []Line) *types.GlobalDiscountConfig {
	if m.discounts == nil {
		return nil
	}
	global := m.discounts.Config()
	if global == nil || global.MinOrderTotal == nil {
		return global
	}

	base := decimal.Zero
	for _, line := range lines {
		if line.Product == nil {
			continue
		}
		base = base.Add(decimal.NewFromFloat(line.Product.BasePrice).Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	if !pricing.MeetsMinOrder(global, base.InexactFloat64()) {
		return nil
	}
	return global
}
