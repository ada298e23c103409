package session

import (
	sessioncore "github.com/verdantlane/storefront-core/internal/session"
	"github.com/verdantlane/storefront-core/pkg/enums"
)

type cartView struct {
	Mode      enums.SessionMode        `json:"mode"`
	Lines     []sessioncore.PricedLine `json:"lines"`
	Totals    sessioncore.Totals       `json:"totals"`
	IsLoading bool                     `json:"isLoading"`
	LastError string                   `json:"lastError,omitempty"`
	PanelOpen bool                     `json:"panelOpen"`
}

func newCartView(svc Sessions) cartView {
	state := svc.Snapshot()
	return cartView{
		Mode:      state.Mode,
		Lines:     svc.PricedLines(),
		Totals:    svc.Totals(),
		IsLoading: state.IsLoading,
		LastError: state.LastError,
		PanelOpen: state.PanelOpen,
	}
}

type panelView struct {
	PanelOpen bool `json:"panelOpen"`
}
