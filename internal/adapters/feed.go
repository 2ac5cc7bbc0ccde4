// Package adapters provides the generic in-tree adapter kinds: an
// RSS/Atom feed reader and a CSS-selector HTML listing scraper. Every
// configured source reduces to one of these.
package adapters

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/quintessa/grantwatch/internal/config"
	"github.com/quintessa/grantwatch/internal/item"
	"github.com/quintessa/grantwatch/internal/provider"
)

const maxPerSource = 50

// Register installs the built-in adapter kinds on a registry.
func Register(r *provider.Registry) {
	r.RegisterKind("feed", NewFeedAdapter)
	r.RegisterKind("html", NewHTMLAdapter)
}

// FeedAdapter reads an RSS/Atom feed and emits one raw record per entry.
type FeedAdapter struct {
	name  string
	group string
	url   string
}

// NewFeedAdapter builds a feed adapter from its declaration.
func NewFeedAdapter(cfg config.Adapter) (provider.Provider, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("feed adapter requires a url")
	}
	return &FeedAdapter{
		name:  cfg.Name,
		group: item.NormalizeGroup(cfg.Group),
		url:   cfg.URL,
	}, nil
}

func (a *FeedAdapter) Name() string  { return a.name }
func (a *FeedAdapter) Group() string { return a.group }

// Fetch parses the feed and returns its entries as raw records. Entries
// without a usable title or link are dropped; the filter, when set, keeps
// matching titles only.
func (a *FeedAdapter) Fetch(ctx context.Context, filter *regexp.Regexp) ([]map[string]any, error) {
	feed, err := gofeed.NewParser().ParseURLWithContext(a.url, ctx)
	if err != nil {
		return nil, fmt.Errorf("parsing feed %s: %w", a.url, err)
	}

	var out []map[string]any
	for _, entry := range feed.Items {
		if len(out) >= maxPerSource {
			break
		}

		title := strings.TrimSpace(entry.Title)
		link := entry.Link
		if link == "" {
			link = entry.GUID
		}
		if title == "" || link == "" {
			continue
		}
		if filter != nil && !filter.MatchString(title) {
			continue
		}

		raw := map[string]any{
			"title": title,
			"link":  link,
		}
		if entry.PublishedParsed != nil {
			raw["published"] = entry.PublishedParsed.Format("2006-01-02")
		} else if entry.UpdatedParsed != nil {
			raw["published"] = entry.UpdatedParsed.Format("2006-01-02")
		}
		if entry.Description != "" {
			raw["description"] = entry.Description
		}

		out = append(out, raw)
	}

	return out, nil
}
