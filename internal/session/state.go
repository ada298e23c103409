package session

import (
	"time"

	"github.com/verdantlane/storefront-core/pkg/enums"
	"github.com/verdantlane/storefront-core/pkg/types"
)

// guestIDPrefix marks synthetic line IDs for items that only exist in the
// local guest store and have no server-side identity yet.
const guestIDPrefix = "guest-"

// Line is one cart entry as the session exposes it, enriched with the catalog
// snapshot when available. Lines missing their snapshot still count toward the
// item total but price as zero until a refresh succeeds.
type Line struct {
	ID        string                 `json:"id"`
	ProductID string                 `json:"productId"`
	Quantity  int                    `json:"quantity"`
	Product   *types.ProductSnapshot `json:"product,omitempty"`
	CreatedAt time.Time              `json:"createdAt,omitzero"`
	UpdatedAt time.Time              `json:"updatedAt,omitzero"`
}

// State is the observable cart session. Snapshot returns a deep copy so
// callers can never mutate the session through it.
type State struct {
	Mode      enums.SessionMode `json:"mode"`
	Lines     []Line            `json:"lines"`
	IsLoading bool              `json:"isLoading"`
	LastError string            `json:"lastError,omitempty"`
	PanelOpen bool              `json:"panelOpen"`
}

// Totals is the priced summary of the current lines.
type Totals struct {
	ItemCount     int     `json:"itemCount"`
	Subtotal      float64 `json:"subtotal"`
	DiscountTotal float64 `json:"discountTotal"`
	Total         float64 `json:"total"`
	GlobalApplied bool    `json:"globalApplied"`
}

func guestLineID(productID string) string {
	return guestIDPrefix + productID
}

func cloneLines(lines []Line) []Line {
	cloned := make([]Line, len(lines))
	for i, line := range lines {
		cloned[i] = line
		if line.Product != nil {
			product := *line.Product
			cloned[i].Product = &product
		}
	}
	return cloned
}
