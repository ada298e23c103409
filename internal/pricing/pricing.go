package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/verdantlane/storefront-core/pkg/enums"
	"github.com/verdantlane/storefront-core/pkg/types"
)

var (
	hundred = decimal.NewFromInt(100)
)

// Quote is the effective price of one product under the configured discounts.
type Quote struct {
	BasePrice       float64             `json:"basePrice"`
	CurrentPrice    float64             `json:"currentPrice"`
	DiscountAmount  float64             `json:"discountAmount"`
	DiscountPercent float64             `json:"discountPercent"`
	HasDiscount     bool                `json:"hasDiscount"`
	Source          enums.PricingSource `json:"appliedSource"`
	Label           string              `json:"appliedLabel,omitempty"`
}

// Resolve computes the effective price for a product. The global discount
// strictly takes precedence over the per-product discount; the two never
// stack. The global config's minOrderTotal threshold is a basket-level
// concern: callers gate it with MeetsMinOrder and pass nil when unmet.
// Identical inputs always yield identical outputs.
func Resolve(product types.ProductSnapshot, global *types.GlobalDiscountConfig, now time.Time) Quote {
	base := decimal.NewFromFloat(product.BasePrice)

	if globalEligible(global) {
		return buildQuote(base, global.Type, global.Value, enums.PricingSourceGlobal, global.Label)
	}

	if IsDiscountActive(product, now) && product.DiscountValue > 0 {
		return buildQuote(base, product.DiscountType, product.DiscountValue, enums.PricingSourceProduct, "")
	}

	return noDiscountQuote(base)
}

// IsDiscountActive reports whether the product's own discount applies at the
// given instant. A discount with no bounds is active indefinitely once
// discountActive is set.
func IsDiscountActive(product types.ProductSnapshot, now time.Time) bool {
	if !product.DiscountActive || product.DiscountType == enums.DiscountTypeNone || product.DiscountType == "" {
		return false
	}
	if product.DiscountStart != nil && now.Before(*product.DiscountStart) {
		return false
	}
	if product.DiscountEnd != nil && now.After(*product.DiscountEnd) {
		return false
	}
	return true
}

// MeetsMinOrder reports whether the basket total satisfies the global
// discount's minimum order threshold. An absent threshold always passes.
func MeetsMinOrder(cfg *types.GlobalDiscountConfig, basketTotal float64) bool {
	if cfg == nil || cfg.MinOrderTotal == nil {
		return true
	}
	return basketTotal >= *cfg.MinOrderTotal
}

func globalEligible(cfg *types.GlobalDiscountConfig) bool {
	if cfg == nil {
		return false
	}
	return cfg.IsActive && cfg.Type != enums.DiscountTypeNone && cfg.Type != "" && cfg.Value > 0
}

func buildQuote(base decimal.Decimal, discountType enums.DiscountType, value float64, source enums.PricingSource, label string) Quote {
	discount := applyDiscount(base, discountType, value).Round(2)
	if !discount.IsPositive() {
		return noDiscountQuote(base)
	}

	current := base.Sub(discount).Round(2)

	return Quote{
		BasePrice:       base.InexactFloat64(),
		CurrentPrice:    current.InexactFloat64(),
		DiscountAmount:  discount.InexactFloat64(),
		DiscountPercent: displayPercent(base, discount, discountType, value),
		HasDiscount:     true,
		Source:          source,
		Label:           label,
	}
}

func noDiscountQuote(base decimal.Decimal) Quote {
	rounded := base.Round(2)
	return Quote{
		BasePrice:       base.InexactFloat64(),
		CurrentPrice:    rounded.InexactFloat64(),
		DiscountAmount:  0,
		DiscountPercent: 0,
		HasDiscount:     false,
		Source:          enums.PricingSourceNone,
	}
}

// applyDiscount returns the unrounded discount amount for one line price.
// Percentage values clamp to [0,100]; flat values clamp to [0, amount] so a
// flat discount can never exceed the line's own price or go negative.
func applyDiscount(amount decimal.Decimal, discountType enums.DiscountType, value float64) decimal.Decimal {
	switch discountType {
	case enums.DiscountTypePercentage:
		clamped := clampFloat(value, 0, 100)
		return amount.Mul(decimal.NewFromFloat(clamped)).Div(hundred)
	case enums.DiscountTypeFlat:
		flat := decimal.NewFromFloat(value)
		if flat.IsNegative() {
			return decimal.Zero
		}
		if flat.GreaterThan(amount) {
			return amount
		}
		return flat
	default:
		return decimal.Zero
	}
}

// displayPercent derives the percent shown next to a discounted price. For
// percentage discounts it is the clamped value itself; for flat discounts it
// is the rounded share of the base price, guarding division by zero.
func displayPercent(base, discount decimal.Decimal, discountType enums.DiscountType, value float64) float64 {
	switch discountType {
	case enums.DiscountTypePercentage:
		return clampFloat(value, 0, 100)
	case enums.DiscountTypeFlat:
		if base.IsZero() {
			return 0
		}
		return discount.Div(base).Mul(hundred).Round(0).InexactFloat64()
	default:
		return 0
	}
}

func clampFloat(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
