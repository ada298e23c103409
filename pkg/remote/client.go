package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/verdantlane/storefront-core/pkg/config"
	pkgerrors "github.com/verdantlane/storefront-core/pkg/errors"
	"github.com/verdantlane/storefront-core/pkg/types"
)

const responseBodyReadLimit int64 = 1 << 20

var errBaseURLRequired = errors.New("remote service base URLs are required")

// Client talks to the marketplace cart, catalog and settings services. Every
// response arrives wrapped in the shared {status, message, data} envelope.
type Client struct {
	httpClient  *http.Client
	cartURL     string
	catalogURL  string
	settingsURL string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient builds the marketplace client from remote service configuration.
func NewClient(cfg config.RemoteConfig, opts ...Option) (*Client, error) {
	cartURL := strings.TrimRight(strings.TrimSpace(cfg.CartURL), "/")
	catalogURL := strings.TrimRight(strings.TrimSpace(cfg.CatalogURL), "/")
	settingsURL := strings.TrimRight(strings.TrimSpace(cfg.SettingsURL), "/")
	if cartURL == "" || catalogURL == "" || settingsURL == "" {
		return nil, errBaseURLRequired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &Client{
		httpClient:  &http.Client{Timeout: timeout},
		cartURL:     cartURL,
		catalogURL:  catalogURL,
		settingsURL: settingsURL,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// do executes one enveloped request and decodes data into out when non-nil.
func (c *Client) do(ctx context.Context, method, url, token string, payload, out any) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeRemote, "marketplace client not configured")
	}

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeRemote, err, "marshal request")
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeRemote, err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeRemote, err, "execute request")
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeRemote, err, "read response")
	}

	var envelope types.RemoteEnvelope
	decodeErr := json.Unmarshal(raw, &envelope)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg := strings.TrimSpace(envelope.Message)
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		return pkgerrors.Wrap(pkgerrors.CodeRemote, fmt.Errorf("status %d: %s", resp.StatusCode, msg), "request failed")
	}
	if decodeErr != nil {
		return pkgerrors.Wrap(pkgerrors.CodeRemote, decodeErr, "decode response envelope")
	}
	// A non-success envelope on a 2xx is treated identically to a transport failure.
	if !envelope.OK() {
		msg := strings.TrimSpace(envelope.Message)
		if msg == "" {
			msg = "remote call failed"
		}
		return pkgerrors.New(pkgerrors.CodeRemote, msg)
	}

	if out == nil || len(envelope.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeRemote, err, "decode response data")
	}
	return nil
}

func joinURL(base string, parts ...string) string {
	trimmed := strings.TrimRight(base, "/")
	for _, part := range parts {
		trimmed = trimmed + "/" + strings.TrimLeft(part, "/")
	}
	return trimmed
}
