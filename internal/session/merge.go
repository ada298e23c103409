package session

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/verdantlane/storefront-core/pkg/auth"
	"github.com/verdantlane/storefront-core/pkg/enums"
	pkgerrors "github.com/verdantlane/storefront-core/pkg/errors"
)

// Login switches the session to the server cart, merging guest lines in.
//
// The merge is additive: for each guest line whose quantity exceeds the
// server's, the difference is added; when the server already holds at least as
// much, the server quantity stands. Per-line failures do not stop the merge.
// The guest lines are spent after the merge attempt regardless of per-line
// outcomes; the session finishes on a fresh authoritative fetch, which is
// mirrored back into the local store as a cache.
//
// If the server cart cannot be fetched at all, the session stays in guest mode
// and the guest store is left untouched.
func (m *Manager) Login(ctx context.Context, token string) error {
	start := m.now()
	m.opMu.Lock()
	defer m.opMu.Unlock()

	if m.Mode() == enums.SessionModeAuthenticated {
		return pkgerrors.New(pkgerrors.CodeValidation, "session is already authenticated")
	}

	claims, err := auth.InspectAccessToken(token, m.now())
	if err != nil {
		m.metrics.IncOperation("login", enums.SessionModeGuest.String(), "error")
		return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "inspecting access token")
	}
	ctx = m.withUser(ctx, claims.UserID)

	m.setLoading(true)
	guestLines := m.store.ReadAll()

	serverLines, err := m.carts.FetchCart(ctx, token)
	if err != nil {
		m.stateMu.Lock()
		m.state.IsLoading = false
		m.state.LastError = err.Error()
		m.stateMu.Unlock()
		m.metrics.IncOperation("login", enums.SessionModeGuest.String(), "error")
		if m.logg != nil {
			m.logg.Error(ctx, "login aborted, server cart unavailable", err)
		}
		return err
	}

	serverQty := make(map[string]int, len(serverLines))
	for _, line := range serverLines {
		serverQty[line.ProductID] = line.Quantity
	}

	var mergeErr error
	for _, guestLine := range guestLines {
		delta := guestLine.Quantity - serverQty[guestLine.ProductID]
		if delta <= 0 {
			m.metrics.IncMergeLine("kept_server")
			continue
		}
		if _, err := m.carts.AddCartItem(ctx, token, guestLine.ProductID, delta); err != nil {
			mergeErr = multierr.Append(mergeErr, fmt.Errorf("merge %s: %w", guestLine.ProductID, err))
			m.metrics.IncMergeLine("failed")
			continue
		}
		m.metrics.IncMergeLine("added")
	}

	// Local truth is spent once it has been offered to the server, even when
	// some lines failed; keeping it would double-merge on the next login.
	m.store.Clear()

	strat := &authStrategy{token: token, carts: m.carts, products: m.products}
	lines, refreshErr := strat.Refresh(ctx)
	if refreshErr != nil {
		typed := pkgerrors.As(refreshErr)
		if typed == nil || typed.Code() != pkgerrors.CodeEnrichment {
			// The session is authenticated either way; fall back to the
			// pre-merge server view until the next refresh.
			lines = make([]Line, 0, len(serverLines))
			for _, remoteLine := range serverLines {
				lines = append(lines, fromRemoteLine(remoteLine))
			}
		}
	}

	combined := multierr.Combine(mergeErr, refreshErr)

	m.stateMu.Lock()
	m.state.Mode = enums.SessionModeAuthenticated
	m.state.Lines = cloneLines(lines)
	m.state.IsLoading = false
	m.state.LastError = ""
	if combined != nil {
		m.state.LastError = combined.Error()
	}
	m.token = token
	m.stateMu.Unlock()

	// The store now caches the merged server cart for a later logout.
	m.mirrorToStore(lines)

	outcome := "success"
	if combined != nil {
		outcome = "degraded"
	}
	m.metrics.IncOperation("login", enums.SessionModeGuest.String(), outcome)
	m.metrics.ObserveDuration("login", m.now().Sub(start))

	if m.logg != nil {
		m.logg.Info(m.logg.WithField(ctx, "merged_lines", len(guestLines)), "session authenticated")
	}

	if mergeErr != nil {
		return pkgerrors.Wrap(pkgerrors.CodeMerge, mergeErr, "merging guest cart").
			WithDetails(map[string]any{"mergedLines": len(guestLines)})
	}
	return nil
}

// Logout returns the session to guest mode. The server cart is left alone; the
// local store, kept as a mirror of the last synced server cart, becomes the
// source of truth again.
func (m *Manager) Logout(ctx context.Context) error {
	start := m.now()
	m.opMu.Lock()
	defer m.opMu.Unlock()

	if m.Mode() == enums.SessionModeGuest {
		return nil
	}

	strat := &guestStrategy{store: m.store, products: m.products}
	lines, err := strat.Refresh(ctx)

	m.stateMu.Lock()
	m.state.Mode = enums.SessionModeGuest
	m.state.Lines = cloneLines(lines)
	m.state.IsLoading = false
	m.state.LastError = ""
	if err != nil {
		m.state.LastError = err.Error()
	}
	m.token = ""
	m.stateMu.Unlock()

	m.metrics.IncOperation("logout", enums.SessionModeAuthenticated.String(), "success")
	m.metrics.ObserveDuration("logout", m.now().Sub(start))
	return nil
}

func (m *Manager) withUser(ctx context.Context, userID string) context.Context {
	if m.logg == nil || userID == "" {
		return ctx
	}
	return m.logg.WithField(ctx, "user_id", userID)
}
