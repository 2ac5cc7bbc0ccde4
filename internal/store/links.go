package store

import (
	"fmt"
	"strconv"
	"time"

	"github.com/quintessa/grantwatch/internal/item"
)

// Link is a user-registered (url, group) pair consumed by the universal
// extractor. Run-status fields are overwritten after every extraction
// attempt and never otherwise.
type Link struct {
	UID        string `json:"uid"`
	URL        string `json:"url"`
	Grupo      string `json:"grupo"`
	Nome       string `json:"nome"`
	Ativo      bool   `json:"ativo"`
	CreatedAt  string `json:"created_at"`
	LastRun    string `json:"last_run"`
	LastStatus string `json:"last_status"`
	LastItems  string `json:"last_items"`
}

// ReadLinks returns every registered link. Blank rows are skipped.
func (s *Store) ReadLinks() ([]Link, error) {
	rows, err := s.api.GetAllRows(SheetLinks)
	if err != nil {
		return nil, fmt.Errorf("reading links: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	var links []Link
	for _, r := range rows[1:] {
		r = padRow(r, len(LinksHeader))
		if r[0] == "" {
			continue
		}
		links = append(links, Link{
			UID:        r[0],
			URL:        r[1],
			Grupo:      r[2],
			Nome:       r[3],
			Ativo:      r[4] == "true",
			CreatedAt:  r[5],
			LastRun:    r[6],
			LastStatus: r[7],
			LastItems:  r[8],
		})
	}
	return links, nil
}

// FindLink returns the link with the given uid, or nil.
func (s *Store) FindLink(uid string) (*Link, error) {
	links, err := s.ReadLinks()
	if err != nil {
		return nil, err
	}
	for i := range links {
		if links[i].UID == uid {
			return &links[i], nil
		}
	}
	return nil, nil
}

// AddLink registers a new link. The uid derives from (url, group): the
// store does not enforce uniqueness on insert, so callers are expected to
// check FindLink first when idempotence matters.
func (s *Store) AddLink(url, grupo, nome string) (*Link, error) {
	link := &Link{
		UID:       item.LinkUID(url, grupo),
		URL:       url,
		Grupo:     item.NormalizeGroup(grupo),
		Nome:      nome,
		Ativo:     true,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	err := s.write(func() error {
		return s.api.AppendRows(SheetLinks, [][]string{{
			link.UID,
			link.URL,
			link.Grupo,
			link.Nome,
			"true",
			link.CreatedAt,
			"",
			"",
			"",
		}})
	})
	if err != nil {
		return nil, fmt.Errorf("adding link: %w", err)
	}
	return link, nil
}

// UpdateLink patches the named columns of one link. uid is never writable.
// A missing uid is a no-op reported as false.
func (s *Store) UpdateLink(uid string, patch map[string]string) (bool, error) {
	rows, err := s.api.GetAllRows(SheetLinks)
	if err != nil {
		return false, fmt.Errorf("reading links: %w", err)
	}
	if len(rows) < 2 {
		return false, nil
	}

	header := rows[0]
	for i, r := range rows[1:] {
		if len(r) == 0 || r[0] != uid {
			continue
		}
		rowNum := i + 2
		err := s.write(func() error {
			for key, value := range patch {
				col := colIndex(header, key)
				if col < 0 || key == "uid" {
					continue
				}
				if err := s.api.UpdateCell(SheetLinks, rowNum, col+1, value); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return false, fmt.Errorf("updating link %s: %w", uid, err)
		}
		return true, nil
	}
	return false, nil
}

// DeleteLink removes one registered link. A missing uid is a no-op
// reported as false.
func (s *Store) DeleteLink(uid string) (bool, error) {
	rows, err := s.api.GetAllRows(SheetLinks)
	if err != nil {
		return false, fmt.Errorf("reading links: %w", err)
	}
	if len(rows) < 2 {
		return false, nil
	}
	for i, r := range rows[1:] {
		if len(r) > 0 && r[0] == uid {
			rowNum := i + 2
			if err := s.write(func() error {
				return s.api.DeleteRow(SheetLinks, rowNum)
			}); err != nil {
				return false, fmt.Errorf("deleting link %s: %w", uid, err)
			}
			return true, nil
		}
	}
	return false, nil
}

// UpdateLinkRunStatus records the outcome of one extraction attempt.
func (s *Store) UpdateLinkRunStatus(uid, status string, itemCount int) (bool, error) {
	return s.UpdateLink(uid, map[string]string{
		"last_run":    time.Now().UTC().Format(time.RFC3339),
		"last_status": status,
		"last_items":  strconv.Itoa(itemCount),
	})
}
