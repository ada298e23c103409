package types

import (
	"time"

	"github.com/verdantlane/storefront-core/pkg/enums"
)

// ProductSnapshot is the catalog view of a product captured at enrichment time.
// The catalog service owns it; this side only reads it.
type ProductSnapshot struct {
	ID             string             `json:"id"`
	Title          string             `json:"title"`
	BasePrice      float64            `json:"basePrice"`
	StockLevel     int                `json:"stockLevel"`
	DiscountType   enums.DiscountType `json:"discountType"`
	DiscountValue  float64            `json:"discountValue"`
	DiscountActive bool               `json:"discountActive"`
	DiscountStart  *time.Time         `json:"discountStart,omitempty"`
	DiscountEnd    *time.Time         `json:"discountEnd,omitempty"`
}
