package adapters

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/quintessa/grantwatch/internal/config"
	"github.com/quintessa/grantwatch/internal/item"
	"github.com/quintessa/grantwatch/internal/provider"
)

const userAgent = "Mozilla/5.0 (compatible; grantwatch/1.0)"

// HTMLAdapter scrapes a listing page with CSS selectors. item_selector
// picks the repeated element; title_selector and link_selector are
// resolved within each match and default to the element itself and its
// first anchor.
type HTMLAdapter struct {
	name          string
	group         string
	url           string
	itemSelector  string
	titleSelector string
	linkSelector  string
	client        *http.Client
}

// NewHTMLAdapter builds an HTML listing adapter from its declaration.
func NewHTMLAdapter(cfg config.Adapter) (provider.Provider, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("html adapter requires a url")
	}
	if cfg.ItemSelector == "" {
		return nil, fmt.Errorf("html adapter requires an item_selector")
	}
	return &HTMLAdapter{
		name:          cfg.Name,
		group:         item.NormalizeGroup(cfg.Group),
		url:           cfg.URL,
		itemSelector:  cfg.ItemSelector,
		titleSelector: cfg.TitleSelector,
		linkSelector:  cfg.LinkSelector,
		client:        &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (a *HTMLAdapter) Name() string  { return a.name }
func (a *HTMLAdapter) Group() string { return a.group }

// Fetch downloads the listing page and extracts one raw record per
// matched element.
func (a *HTMLAdapter) Fetch(ctx context.Context, filter *regexp.Regexp) ([]map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", a.url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", a.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: status %d", a.url, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", a.url, err)
	}

	base, err := url.Parse(a.url)
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}

	var out []map[string]any
	doc.Find(a.itemSelector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if len(out) >= maxPerSource {
			return false
		}

		title := a.extractTitle(sel)
		link := a.extractLink(sel, base)
		if title == "" || link == "" {
			return true
		}
		if filter != nil && !filter.MatchString(title) {
			return true
		}

		out = append(out, map[string]any{
			"title": title,
			"link":  link,
		})
		return true
	})

	return out, nil
}

func (a *HTMLAdapter) extractTitle(sel *goquery.Selection) string {
	if a.titleSelector != "" {
		sel = sel.Find(a.titleSelector).First()
	}
	return strings.Join(strings.Fields(sel.Text()), " ")
}

func (a *HTMLAdapter) extractLink(sel *goquery.Selection, base *url.URL) string {
	target := sel
	if a.linkSelector != "" {
		target = sel.Find(a.linkSelector).First()
	} else if !sel.Is("a") {
		target = sel.Find("a[href]").First()
	}

	href, ok := target.Attr("href")
	if !ok || href == "" {
		return ""
	}

	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}
