package types

import "github.com/verdantlane/storefront-core/pkg/enums"

// GlobalDiscountConfig is the storewide discount singleton managed through
// admin settings. The session core treats it as a read-only snapshot.
type GlobalDiscountConfig struct {
	IsActive      bool               `json:"isActive"`
	Type          enums.DiscountType `json:"type"`
	Value         float64            `json:"value"`
	MinOrderTotal *float64           `json:"minOrderTotal,omitempty"`
	Label         string             `json:"label,omitempty"`
}
