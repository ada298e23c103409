package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/verdantlane/storefront-core/pkg/logger"
)

// Line is one guest cart entry. A line with a non-positive quantity must not
// exist in the durable document; removal is expressed by dropping the line.
type Line struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// legacyDocument is the wrapped shape older profiles persisted. Tolerated on
// read, never written.
type legacyDocument struct {
	Items []Line `json:"items"`
}

// Store keeps the guest cart in a single JSON document scoped to one profile.
// Operations are synchronous and never touch the network; storage failures are
// swallowed and logged so local truth never blocks the user.
type Store struct {
	mu   sync.Mutex
	path string
	logg *logger.Logger
}

// New builds a store persisting to the given document path.
func New(path string, logg *logger.Logger) *Store {
	return &Store{path: path, logg: logg}
}

// ReadAll returns the durable guest cart, dropping malformed and non-positive
// entries. Any parse or read failure yields an empty list, never an error.
func (s *Store) ReadAll() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLocked()
}

// WriteAll replaces the durable list with the valid subset of lines.
func (s *Store) WriteAll(lines []Line) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeLocked(filterValid(lines))
}

// Upsert increments an existing line by deltaQuantity or appends a new one.
func (s *Store) Upsert(productID string, deltaQuantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.readLocked()
	found := false
	for i := range lines {
		if lines[i].ProductID == productID {
			lines[i].Quantity += deltaQuantity
			found = true
			break
		}
	}
	if !found {
		lines = append(lines, Line{ProductID: productID, Quantity: deltaQuantity})
	}
	s.writeLocked(filterValid(lines))
}

// SetQuantity sets the absolute quantity of an existing line. A non-positive
// quantity removes the line; a missing line is a no-op.
func (s *Store) SetQuantity(productID string, quantity int) {
	if quantity <= 0 {
		s.Remove(productID)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.readLocked()
	for i := range lines {
		if lines[i].ProductID == productID {
			lines[i].Quantity = quantity
			s.writeLocked(lines)
			return
		}
	}
}

// Remove deletes the line if present. Idempotent.
func (s *Store) Remove(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.readLocked()
	kept := lines[:0]
	for _, line := range lines {
		if line.ProductID != productID {
			kept = append(kept, line)
		}
	}
	if len(kept) == len(lines) {
		return
	}
	s.writeLocked(kept)
}

// Clear deletes the entire durable document.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.warn("guest cart clear failed", err)
	}
}

// QuantityOf returns the stored quantity for a product, 0 when absent.
func (s *Store) QuantityOf(productID string) int {
	for _, line := range s.ReadAll() {
		if line.ProductID == productID {
			return line.Quantity
		}
	}
	return 0
}

// Contains reports whether a line exists for the product.
func (s *Store) Contains(productID string) bool {
	return s.QuantityOf(productID) > 0
}

func (s *Store) readLocked() []Line {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.warn("guest cart read failed", err)
		}
		return []Line{}
	}
	return decodeLines(raw)
}

func (s *Store) writeLocked(lines []Line) {
	encoded, err := json.Marshal(lines)
	if err != nil {
		s.warn("guest cart encode failed", err)
		return
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.warn("guest cart dir create failed", err)
		return
	}

	tmp, err := os.CreateTemp(dir, ".guest_cart-*")
	if err != nil {
		s.warn("guest cart temp create failed", err)
		return
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(encoded); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		s.warn("guest cart write failed", err)
		return
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		s.warn("guest cart close failed", err)
		return
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		s.warn("guest cart replace failed", err)
	}
}

func (s *Store) warn(msg string, err error) {
	if s.logg == nil {
		return
	}
	s.logg.Warn(s.logg.WithField(context.Background(), "error", err.Error()), msg)
}

// decodeLines accepts both the plain-list format and the legacy wrapped-object
// format, validating entries one by one so a single bad entry cannot poison
// the rest of the document.
func decodeLines(raw []byte) []Line {
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		var legacy struct {
			Items []json.RawMessage `json:"items"`
		}
		if err := json.Unmarshal(raw, &legacy); err != nil {
			return []Line{}
		}
		entries = legacy.Items
	}

	lines := make([]Line, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for _, entry := range entries {
		var candidate struct {
			ProductID *string  `json:"productId"`
			Quantity  *float64 `json:"quantity"`
		}
		if err := json.Unmarshal(entry, &candidate); err != nil {
			continue
		}
		if candidate.ProductID == nil || candidate.Quantity == nil {
			continue
		}
		id := strings.TrimSpace(*candidate.ProductID)
		qty := *candidate.Quantity
		if id == "" || qty <= 0 || qty != math.Trunc(qty) {
			continue
		}
		// One line per product; a hand-edited document can carry duplicates,
		// and the first occurrence wins.
		if seen[id] {
			continue
		}
		seen[id] = true
		lines = append(lines, Line{ProductID: id, Quantity: int(qty)})
	}
	return lines
}

func filterValid(lines []Line) []Line {
	valid := make([]Line, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line.ProductID) == "" || line.Quantity <= 0 {
			continue
		}
		valid = append(valid, line)
	}
	return valid
}
