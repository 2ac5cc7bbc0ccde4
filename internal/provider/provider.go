// Package provider defines the contract a collection source must satisfy
// and the registry that assembles configured sources into a runnable set.
package provider

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/quintessa/grantwatch/internal/config"
	"github.com/quintessa/grantwatch/internal/errbus"
	"github.com/quintessa/grantwatch/internal/item"
)

// Provider fetches raw opportunity records from one source. Fetch returns
// loosely-typed maps; field naming is reconciled downstream during
// normalization. A nil filter means no title filtering.
type Provider interface {
	Name() string
	Group() string
	Fetch(ctx context.Context, filter *regexp.Regexp) ([]map[string]any, error)
}

// Constructor builds a Provider from one adapter declaration.
type Constructor func(cfg config.Adapter) (Provider, error)

// Registry assembles declared adapters into providers. Construction is
// lazy and cached; a declaration whose kind is unknown or whose
// constructor fails is skipped with an error-bus entry, never aborting
// the rest.
type Registry struct {
	mu           sync.Mutex
	constructors map[string]Constructor
	bus          *errbus.Bus
	decls        []config.Adapter
	cached       []Provider
	built        bool
}

// NewRegistry creates an empty registry.
func NewRegistry(bus *errbus.Bus) *Registry {
	return &Registry{
		constructors: make(map[string]Constructor),
		bus:          bus,
	}
}

// RegisterKind installs a constructor for an adapter kind.
func (r *Registry) RegisterKind(kind string, c Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.constructors[strings.ToLower(kind)] = c
	r.built = false
}

// Load replaces the adapter declarations and invalidates the cache.
func (r *Registry) Load(decls []config.Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decls = decls
	r.built = false
}

// Reload forces reconstruction on the next Providers call.
func (r *Registry) Reload() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.built = false
}

// Providers returns all successfully constructed providers, sorted by
// (group, name).
func (r *Registry) Providers() []Provider {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.built {
		r.cached = r.build()
		r.built = true
	}

	out := make([]Provider, len(r.cached))
	copy(out, r.cached)
	return out
}

// ByGroups returns providers whose group is in the given set. The set is
// run through the canonical-group whitelist first, so an empty or fully
// invalid set selects every group.
func (r *Registry) ByGroups(groups []string) []Provider {
	wanted := make(map[string]bool)
	for _, g := range item.FilterGroups(groups) {
		wanted[g] = true
	}

	var out []Provider
	for _, p := range r.Providers() {
		if wanted[p.Group()] {
			out = append(out, p)
		}
	}
	return out
}

// AvailableGroups returns the canonical groups the constructed
// providers cover, sorted. Non-canonical adapter groups are dropped,
// and an empty registry yields the full whitelist so callers always
// have something to offer.
func (r *Registry) AvailableGroups() []string {
	var groups []string
	for _, p := range r.Providers() {
		groups = append(groups, p.Group())
	}
	return item.FilterGroups(groups)
}

func (r *Registry) build() []Provider {
	var out []Provider
	for _, decl := range r.decls {
		ctor, ok := r.constructors[strings.ToLower(decl.Kind)]
		if !ok {
			r.bus.Push("registry", fmt.Errorf("adapter %q: unknown kind %q", decl.Name, decl.Kind))
			continue
		}
		p, err := ctor(decl)
		if err != nil {
			r.bus.Push("registry", fmt.Errorf("adapter %q: %w", decl.Name, err))
			continue
		}
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Group() != out[j].Group() {
			return out[i].Group() < out[j].Group()
		}
		return out[i].Name() < out[j].Name()
	})
	return out
}
