package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/verdantlane/storefront-core/pkg/enums"
	"github.com/verdantlane/storefront-core/pkg/types"
)

var now = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

func product(base float64, discountType enums.DiscountType, value float64, active bool) types.ProductSnapshot {
	return types.ProductSnapshot{
		ID:             "sku-1",
		Title:          "Chamomile Tea",
		BasePrice:      base,
		StockLevel:     10,
		DiscountType:   discountType,
		DiscountValue:  value,
		DiscountActive: active,
	}
}

func globalPercent(value float64) *types.GlobalDiscountConfig {
	return &types.GlobalDiscountConfig{
		IsActive: true,
		Type:     enums.DiscountTypePercentage,
		Value:    value,
		Label:    "Storewide",
	}
}

func TestResolveNoDiscount(t *testing.T) {
	t.Parallel()

	quote := Resolve(product(25, enums.DiscountTypeNone, 0, false), nil, now)

	assert.Equal(t, 25.0, quote.CurrentPrice)
	assert.Equal(t, 0.0, quote.DiscountAmount)
	assert.False(t, quote.HasDiscount)
	assert.Equal(t, enums.PricingSourceNone, quote.Source)
}

func TestResolveGlobalPercentage(t *testing.T) {
	t.Parallel()

	quote := Resolve(product(50, enums.DiscountTypeNone, 0, false), globalPercent(20), now)

	assert.Equal(t, 40.0, quote.CurrentPrice)
	assert.Equal(t, 10.0, quote.DiscountAmount)
	assert.Equal(t, 20.0, quote.DiscountPercent)
	assert.Equal(t, enums.PricingSourceGlobal, quote.Source)
	assert.Equal(t, "Storewide", quote.Label)
	assert.True(t, quote.HasDiscount)
}

func TestResolveGlobalPrecedesProduct(t *testing.T) {
	t.Parallel()

	// The per-product discount is numerically larger; global still wins.
	quote := Resolve(product(100, enums.DiscountTypePercentage, 50, true), globalPercent(5), now)

	assert.Equal(t, enums.PricingSourceGlobal, quote.Source)
	assert.Equal(t, 95.0, quote.CurrentPrice)
}

func TestResolveInactiveGlobalFallsThrough(t *testing.T) {
	t.Parallel()

	global := globalPercent(20)
	global.IsActive = false

	quote := Resolve(product(100, enums.DiscountTypePercentage, 10, true), global, now)
	assert.Equal(t, enums.PricingSourceProduct, quote.Source)
	assert.Equal(t, 90.0, quote.CurrentPrice)
}

func TestResolveGlobalZeroValueFallsThrough(t *testing.T) {
	t.Parallel()

	quote := Resolve(product(100, enums.DiscountTypeFlat, 15, true), globalPercent(0), now)
	assert.Equal(t, enums.PricingSourceProduct, quote.Source)
	assert.Equal(t, 85.0, quote.CurrentPrice)
	assert.Equal(t, 15.0, quote.DiscountPercent)
}

func TestResolvePercentageClamp(t *testing.T) {
	t.Parallel()

	quote := Resolve(product(100, enums.DiscountTypePercentage, 150, true), nil, now)

	assert.Equal(t, 0.0, quote.CurrentPrice)
	assert.Equal(t, 100.0, quote.DiscountAmount)
	assert.Equal(t, 100.0, quote.DiscountPercent)
}

func TestResolveFlatClamp(t *testing.T) {
	t.Parallel()

	quote := Resolve(product(20, enums.DiscountTypeFlat, 500, true), nil, now)

	assert.Equal(t, 0.0, quote.CurrentPrice)
	assert.Equal(t, 20.0, quote.DiscountAmount)
	assert.Equal(t, 100.0, quote.DiscountPercent)
}

func TestResolveNegativeFlatIgnored(t *testing.T) {
	t.Parallel()

	quote := Resolve(product(20, enums.DiscountTypeFlat, -5, true), nil, now)
	assert.False(t, quote.HasDiscount)
	assert.Equal(t, 20.0, quote.CurrentPrice)
}

func TestResolveRoundsHalfUp(t *testing.T) {
	t.Parallel()

	// 10.01 * 12.5% = 1.25125 -> 1.25; 33.33 * 15% = 4.9995 -> 5.00.
	quote := Resolve(product(10.01, enums.DiscountTypePercentage, 12.5, true), nil, now)
	assert.Equal(t, 1.25, quote.DiscountAmount)
	assert.Equal(t, 8.76, quote.CurrentPrice)

	quote = Resolve(product(33.33, enums.DiscountTypePercentage, 15, true), nil, now)
	assert.Equal(t, 5.0, quote.DiscountAmount)
	assert.Equal(t, 28.33, quote.CurrentPrice)
}

func TestResolveZeroBaseGuardsDivision(t *testing.T) {
	t.Parallel()

	quote := Resolve(product(0, enums.DiscountTypeFlat, 10, true), nil, now)
	assert.Equal(t, 0.0, quote.CurrentPrice)
	assert.Equal(t, 0.0, quote.DiscountPercent)
	assert.False(t, quote.HasDiscount)
}

func TestIsDiscountActiveWindows(t *testing.T) {
	t.Parallel()

	future := now.Add(24 * time.Hour)
	past := now.Add(-24 * time.Hour)

	p := product(10, enums.DiscountTypePercentage, 10, true)
	assert.True(t, IsDiscountActive(p, now))

	p.DiscountStart = &future
	assert.False(t, IsDiscountActive(p, now))

	p.DiscountStart = nil
	p.DiscountEnd = &past
	assert.False(t, IsDiscountActive(p, now))

	p.DiscountEnd = nil
	p.DiscountActive = false
	assert.False(t, IsDiscountActive(p, now))

	p.DiscountActive = true
	p.DiscountType = enums.DiscountTypeNone
	assert.False(t, IsDiscountActive(p, now))
}

func TestResolveFutureWindowNoDiscount(t *testing.T) {
	t.Parallel()

	future := now.Add(time.Hour)
	p := product(10, enums.DiscountTypePercentage, 10, true)
	p.DiscountStart = &future

	quote := Resolve(p, nil, now)
	assert.False(t, quote.HasDiscount)
	assert.Equal(t, 10.0, quote.CurrentPrice)
}

func TestMeetsMinOrder(t *testing.T) {
	t.Parallel()

	min := 50.0
	cfg := globalPercent(10)
	cfg.MinOrderTotal = &min

	assert.False(t, MeetsMinOrder(cfg, 49.99))
	assert.True(t, MeetsMinOrder(cfg, 50))
	assert.True(t, MeetsMinOrder(globalPercent(10), 0))
	assert.True(t, MeetsMinOrder(nil, 0))
}

func TestResolveIsDeterministic(t *testing.T) {
	t.Parallel()

	p := product(19.99, enums.DiscountTypePercentage, 33, true)
	first := Resolve(p, globalPercent(12), now)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Resolve(p, globalPercent(12), now))
	}
}
