package store

import (
	"fmt"
	"time"

	"github.com/quintessa/grantwatch/internal/item"
)

// AppendItemsDedup inserts the given opportunities, skipping any whose uid
// is already stored. It returns how many rows were actually added. The
// cache is invalidated exactly once, after a non-empty insert; an empty
// insert set leaves the snapshot untouched.
func (s *Store) AppendItemsDedup(items []*item.Opportunity) (int, error) {
	header, body, err := s.ReadItems()
	if err != nil {
		return 0, err
	}

	seen := make(map[string]bool, len(body))
	for _, r := range body {
		if len(r) > 0 && r[0] != "" {
			seen[r[0]] = true
		}
	}

	now := time.Now()
	var toAdd [][]string
	for _, o := range items {
		if seen[o.UID] {
			continue
		}
		seen[o.UID] = true
		toAdd = append(toAdd, padRow(o.Row(now), len(header)))
	}

	if len(toAdd) == 0 {
		return 0, nil
	}
	if err := s.write(func() error {
		return s.api.AppendRows(SheetItems, toAdd)
	}); err != nil {
		return 0, fmt.Errorf("appending items: %w", err)
	}
	return len(toAdd), nil
}

// UpdateItemByUID patches the named columns of one stored item. Reviewer
// fields only; uid itself is never writable. A missing uid is a no-op
// reported as false, not an error.
func (s *Store) UpdateItemByUID(uid string, patch map[string]string) (bool, error) {
	rows, err := s.api.GetAllRows(SheetItems)
	if err != nil {
		return false, fmt.Errorf("reading items: %w", err)
	}
	if len(rows) < 2 {
		return false, nil
	}

	header := rows[0]
	for i, r := range rows[1:] {
		if len(r) == 0 || r[0] != uid {
			continue
		}
		rowNum := i + 2 // 1-based, after header
		err := s.write(func() error {
			for key, value := range patch {
				col := colIndex(header, key)
				if col < 0 || key == "uid" {
					continue
				}
				if err := s.api.UpdateCell(SheetItems, rowNum, col+1, value); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return false, fmt.Errorf("updating item %s: %w", uid, err)
		}
		return true, nil
	}
	return false, nil
}

// DeleteItemByUID removes one stored item. A missing uid is a no-op
// reported as false.
func (s *Store) DeleteItemByUID(uid string) (bool, error) {
	rows, err := s.api.GetAllRows(SheetItems)
	if err != nil {
		return false, fmt.Errorf("reading items: %w", err)
	}
	if len(rows) < 2 {
		return false, nil
	}
	for i, r := range rows[1:] {
		if len(r) > 0 && r[0] == uid {
			rowNum := i + 2
			if err := s.write(func() error {
				return s.api.DeleteRow(SheetItems, rowNum)
			}); err != nil {
				return false, fmt.Errorf("deleting item %s: %w", uid, err)
			}
			return true, nil
		}
	}
	return false, nil
}

// ClearItems removes every stored item and recreates the header.
func (s *Store) ClearItems() error {
	err := s.write(func() error {
		if err := s.api.Clear(SheetItems); err != nil {
			return err
		}
		return s.api.AppendRows(SheetItems, [][]string{item.ItemsHeader})
	})
	if err != nil {
		return fmt.Errorf("clearing items: %w", err)
	}
	return nil
}
