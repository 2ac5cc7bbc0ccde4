// Package collect runs the configured adapter set and lands the
// normalized opportunities in the store.
package collect

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/quintessa/grantwatch/internal/errbus"
	"github.com/quintessa/grantwatch/internal/item"
	"github.com/quintessa/grantwatch/internal/provider"
	"github.com/quintessa/grantwatch/internal/store"
)

const defaultWorkers = 4

// test seam
var timeNow = time.Now

// Result holds the outcome of one collection run.
type Result struct {
	Items      []*item.Opportunity
	TotalFound int
	Filtered   int
	New        int
	Duplicates int
	ByGroup    map[string]int
	BySource   map[string]int
	Errors     []errbus.Entry
}

// Collector orchestrates adapter runs against the registry.
type Collector struct {
	registry *provider.Registry
	store    *store.Store
	bus      *errbus.Bus
	workers  int
}

// NewCollector creates a collector. workers <= 0 selects the default
// pool size.
func NewCollector(reg *provider.Registry, st *store.Store, bus *errbus.Bus, workers int) *Collector {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Collector{registry: reg, store: st, bus: bus, workers: workers}
}

type outcome struct {
	name  string
	group string
	items []map[string]any
	err   error
}

// Run fetches from every adapter in the selected groups, normalizes and
// deadline-filters the results, and appends them to the store with
// deduplication. One failing adapter never aborts the run; its error
// lands on the bus and in the result. minDays <= 0 falls back to the
// store-configured window.
func (c *Collector) Run(ctx context.Context, minDays int, groups []string) (*Result, error) {
	if minDays <= 0 {
		minDays = c.store.MinDays()
	}
	regexByGroup, err := c.store.RegexByGroup()
	if err != nil {
		c.bus.Push("collect", err)
		regexByGroup = nil
	}
	maxValue := c.store.MaxValue()

	providers := c.registry.ByGroups(groups)
	log.Printf("Collecting from %d adapters (min_days=%d)...", len(providers), minDays)

	outcomes := c.fetchAll(ctx, providers, regexByGroup)

	r := &Result{
		ByGroup:  make(map[string]int),
		BySource: make(map[string]int),
	}
	for _, o := range outcomes {
		if o.err != nil {
			c.bus.Push(o.name, o.err)
			continue
		}
		r.TotalFound += len(o.items)

		for _, raw := range o.items {
			opp, ok := item.Normalize(raw, o.group, o.name)
			if !ok {
				continue
			}
			if !item.WithinWindow(opp.Deadline, minDays, timeNow()) {
				r.Filtered++
				continue
			}
			if maxValue > 0 && exceedsValue(opp, maxValue) {
				r.Filtered++
				continue
			}
			r.Items = append(r.Items, opp)
			r.ByGroup[opp.Group]++
			r.BySource[opp.Source]++
		}
	}

	sort.Slice(r.Items, func(i, j int) bool {
		a, b := r.Items[i], r.Items[j]
		if a.Group != b.Group {
			return a.Group < b.Group
		}
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		return a.Title < b.Title
	})

	added, err := c.store.AppendItemsDedup(r.Items)
	if err != nil {
		return nil, fmt.Errorf("storing collected items: %w", err)
	}
	r.New = added
	r.Duplicates = len(r.Items) - added
	r.Errors = c.bus.Snapshot()

	summary := fmt.Sprintf("collect: %d found, %d kept, %d new, %d duplicates, %d filtered",
		r.TotalFound, len(r.Items), r.New, r.Duplicates, r.Filtered)
	log.Println(summary)
	c.store.Log("INFO", summary)

	return r, nil
}

// fetchAll runs the adapters through a bounded worker pool. Results come
// back in registry order regardless of completion order.
func (c *Collector) fetchAll(ctx context.Context, providers []provider.Provider, regexByGroup map[string]*regexp.Regexp) []outcome {
	outcomes := make([]outcome, len(providers))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < c.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				p := providers[i]
				items, err := fetchSafe(ctx, p, regexByGroup[p.Group()])
				outcomes[i] = outcome{name: p.Name(), group: p.Group(), items: items, err: err}
			}
		}()
	}
	for i := range providers {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return outcomes
}

// fetchSafe invokes one adapter, converting a panic into an error result
// so the pool keeps running.
func fetchSafe(ctx context.Context, p provider.Provider, filter *regexp.Regexp) (items []map[string]any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			items = nil
			err = fmt.Errorf("adapter panicked: %v", rec)
		}
	}()
	return p.Fetch(ctx, filter)
}

func exceedsValue(o *item.Opportunity, maxValue float64) bool {
	v, ok := o.Value()
	return ok && v > maxValue
}
