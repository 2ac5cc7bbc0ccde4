// Package store implements the cached domain store on top of the sheet
// boundary: opportunity rows, registered links, runtime config, and the
// run log. Every mutation funnels through the write helper so the items
// snapshot can never go stale after a successful write.
package store

import (
	"fmt"
	"sync"

	"github.com/quintessa/grantwatch/internal/errbus"
	"github.com/quintessa/grantwatch/internal/item"
	"github.com/quintessa/grantwatch/internal/sheet"
)

// Worksheet names.
const (
	SheetItems  = "items"
	SheetLinks  = "links_cadastrados"
	SheetConfig = "config"
	SheetLogs   = "logs"
)

// LinksHeader is the column layout of the registered-links sheet.
var LinksHeader = []string{
	"uid",
	"url",
	"grupo",
	"nome",
	"ativo",
	"created_at",
	"last_run",
	"last_status",
	"last_items",
}

// ConfigHeader is the column layout of the config sheet.
var ConfigHeader = []string{"key", "value"}

// LogsHeader is the column layout of the logs sheet.
var LogsHeader = []string{"ts", "level", "msg"}

type snapshot struct {
	header []string
	body   [][]string
}

// Store wraps a sheet.API with the domain operations and the read-through
// items cache.
type Store struct {
	api sheet.API
	bus *errbus.Bus

	mu    sync.Mutex
	items *snapshot
}

// Open wraps the backend and makes sure every worksheet exists with its
// expected header. Header trouble here is a configuration-level failure
// and aborts startup.
func Open(api sheet.API, bus *errbus.Bus) (*Store, error) {
	for _, ws := range []struct {
		name   string
		header []string
	}{
		{SheetConfig, ConfigHeader},
		{SheetItems, item.ItemsHeader},
		{SheetLinks, LinksHeader},
		{SheetLogs, LogsHeader},
	} {
		if err := api.EnsureHeader(ws.name, ws.header); err != nil {
			return nil, fmt.Errorf("ensuring sheet %s: %w", ws.name, err)
		}
	}
	return &Store{api: api, bus: bus}, nil
}

// Close closes the backing sheet API.
func (s *Store) Close() error {
	return s.api.Close()
}

// ReadItems returns the items header and body rows, memoized until the
// next write. Body rows are padded to header width so callers can index
// by column without bounds checks.
func (s *Store) ReadItems() ([]string, [][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.items != nil {
		return s.items.header, s.items.body, nil
	}

	rows, err := s.api.GetAllRows(SheetItems)
	if err != nil {
		return nil, nil, fmt.Errorf("reading items: %w", err)
	}
	if len(rows) == 0 {
		s.items = &snapshot{header: item.ItemsHeader}
		return s.items.header, nil, nil
	}

	header := rows[0]
	body := make([][]string, 0, len(rows)-1)
	for _, r := range rows[1:] {
		body = append(body, padRow(r, len(header)))
	}
	s.items = &snapshot{header: header, body: body}
	return header, body, nil
}

// Invalidate drops the items snapshot; the next ReadItems hits the backend.
func (s *Store) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
}

// write runs a mutation and invalidates the snapshot when it succeeds.
// All mutating paths must go through here rather than calling the sheet
// API directly.
func (s *Store) write(fn func() error) error {
	if err := fn(); err != nil {
		return err
	}
	s.Invalidate()
	return nil
}

func padRow(r []string, width int) []string {
	if len(r) >= width {
		return r
	}
	padded := make([]string, width)
	copy(padded, r)
	return padded
}

func colIndex(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	return -1
}
