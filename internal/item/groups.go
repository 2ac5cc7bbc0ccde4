package item

import (
	"sort"
	"strings"
)

// CanonicalGroups is the fixed whitelist of category labels. Anything an
// adapter or link declares outside this set is discarded.
var CanonicalGroups = []string{
	"América Latina/Brasil",
	"Corporativo/Aceleradoras",
	"Fundações e Prêmios",
	"Governo/Multilaterais",
}

// NormalizeGroup collapses cosmetic separator variants around the slash,
// so "Governo / Multilaterais" and "Governo/Multilaterais" compare equal.
func NormalizeGroup(group string) string {
	g := strings.TrimSpace(group)
	g = strings.ReplaceAll(g, " / ", "/")
	g = strings.ReplaceAll(g, " /", "/")
	g = strings.ReplaceAll(g, "/ ", "/")
	return g
}

// IsCanonicalGroup reports whether the (normalized) group is whitelisted.
func IsCanonicalGroup(group string) bool {
	g := NormalizeGroup(group)
	for _, c := range CanonicalGroups {
		if g == c {
			return true
		}
	}
	return false
}

// FilterGroups normalizes the given groups and keeps only canonical ones,
// sorted case-insensitively. An empty result falls back to the full
// whitelist: callers must never receive zero groups.
func FilterGroups(groups []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, g := range groups {
		n := NormalizeGroup(g)
		if n == "" || seen[n] || !IsCanonicalGroup(n) {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	if len(out) == 0 {
		out = append(out, CanonicalGroups...)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})
	return out
}
