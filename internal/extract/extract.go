package extract

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/quintessa/grantwatch/internal/errbus"
	"github.com/quintessa/grantwatch/internal/item"
	"github.com/quintessa/grantwatch/internal/llm"
	"github.com/quintessa/grantwatch/internal/store"
)

// test seam
var timeNow = time.Now

// Extractor runs the model-driven ingestion path over registered links.
type Extractor struct {
	store     *store.Store
	bus       *errbus.Bus
	provider  llm.Provider
	fetcher   *Fetcher
	maxTokens int
}

// NewExtractor creates an extractor. maxTokens <= 0 selects a sensible
// default for a page-sized extraction.
func NewExtractor(st *store.Store, bus *errbus.Bus, p llm.Provider, f *Fetcher, maxTokens int) *Extractor {
	if maxTokens <= 0 {
		maxTokens = 4000
	}
	if f == nil {
		f = NewFetcher(0)
	}
	return &Extractor{store: st, bus: bus, provider: p, fetcher: f, maxTokens: maxTokens}
}

// LinkResult is the outcome of extracting one link.
type LinkResult struct {
	Link  store.Link
	Items int
	Err   error
}

// BatchResult aggregates a run over the active links.
type BatchResult struct {
	Processed int
	Items     int
	Results   []LinkResult
	Errors    []errbus.Entry
}

// ExtractFromLink processes one registered link end to end: fetch the
// page, ask the model for opportunities, normalize, deadline-filter and
// store them. The link's run status is updated whatever the outcome:
// "ok" with the new-item count, or "erro" on any failure. minDays <= 0
// falls back to the store-configured window.
func (e *Extractor) ExtractFromLink(ctx context.Context, link *store.Link, minDays int) (int, error) {
	if e.provider == nil {
		return 0, fmt.Errorf("no extraction model available")
	}
	if minDays <= 0 {
		minDays = e.store.MinDays()
	}

	added, err := e.extract(ctx, link, minDays)
	if err != nil {
		e.bus.Push(link.URL, err)
		e.store.Log("ERROR", fmt.Sprintf("extract %s: %v", link.URL, err))
		if _, statusErr := e.store.UpdateLinkRunStatus(link.UID, "erro", 0); statusErr != nil {
			e.bus.Push(link.URL, statusErr)
		}
		return 0, err
	}

	e.store.Log("INFO", fmt.Sprintf("extract %s: %d new items", link.URL, added))
	if _, statusErr := e.store.UpdateLinkRunStatus(link.UID, "ok", added); statusErr != nil {
		e.bus.Push(link.URL, statusErr)
	}
	return added, nil
}

func (e *Extractor) extract(ctx context.Context, link *store.Link, minDays int) (int, error) {
	content, err := e.fetcher.FetchPage(ctx, link.URL)
	if err != nil {
		return 0, err
	}

	pattern := ""
	if regexByGroup, rerr := e.store.RegexByGroup(); rerr == nil {
		if re, ok := regexByGroup[link.Grupo]; ok {
			pattern = re.String()
		}
	}
	maxValue := e.store.MaxValue()
	now := timeNow()

	user := buildUserPrompt(content, link.URL, link.Grupo, pattern, minDays, maxValue, now)
	resp, err := e.provider.Chat(ctx, systemPrompt, user, e.maxTokens)
	if err != nil {
		return 0, err
	}

	parsed := llm.ParseItemsResponse(resp)
	if parsed == nil {
		return 0, fmt.Errorf("model response is not a JSON item array")
	}

	var items []*item.Opportunity
	for _, raw := range parsed {
		opp, ok := item.Normalize(raw, link.Grupo, link.URL)
		if !ok {
			continue
		}
		if opp.Link == "" {
			opp.Link = link.URL
			opp.UID = item.UID(opp.Group, opp.Source, opp.Title, opp.Link)
		}
		if !item.WithinWindow(opp.Deadline, minDays, now) {
			continue
		}
		if maxValue > 0 {
			if v, ok := opp.Value(); ok && v > maxValue {
				continue
			}
		}
		items = append(items, opp)
	}

	added, err := e.store.AppendItemsDedup(items)
	if err != nil {
		return 0, fmt.Errorf("storing extracted items: %w", err)
	}
	return added, nil
}

// ExtractFromLinks runs the extractor sequentially over every active
// link. Sequential on purpose: the external model enforces rate limits
// and charges per call. The progress callback, when set, runs after each
// link; a panicking callback is swallowed and never interrupts the
// batch.
func (e *Extractor) ExtractFromLinks(ctx context.Context, minDays int, progress func(LinkResult)) (*BatchResult, error) {
	links, err := e.store.ReadLinks()
	if err != nil {
		return nil, fmt.Errorf("reading links: %w", err)
	}

	r := &BatchResult{}
	for _, link := range links {
		if !link.Ativo {
			continue
		}
		if ctx.Err() != nil {
			break
		}

		added, err := e.ExtractFromLink(ctx, &link, minDays)
		lr := LinkResult{Link: link, Items: added, Err: err}
		r.Processed++
		r.Items += added
		r.Results = append(r.Results, lr)
		notify(progress, lr)

		if err != nil {
			log.Printf("extract failed for %s: %v", link.URL, err)
		}
	}

	r.Errors = e.bus.Snapshot()
	log.Printf("Extraction complete: %d links processed, %d new items", r.Processed, r.Items)
	return r, nil
}

func notify(progress func(LinkResult), lr LinkResult) {
	if progress == nil {
		return
	}
	defer func() {
		recover()
	}()
	progress(lr)
}
