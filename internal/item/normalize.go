package item

import (
	"fmt"
	"strings"
)

// maxTitleLen bounds stored titles.
const maxTitleLen = 300

// Field aliases, first non-empty wins. Adapters and the extraction model
// return either English or Portuguese keys; both are accepted.
var fieldAliases = map[string][]string{
	"title":       {"title", "titulo", "título"},
	"link":        {"link", "url"},
	"deadline":    {"deadline", "prazo"},
	"published":   {"published", "publicado"},
	"value":       {"value", "valor"},
	"agency":      {"agency", "orgao", "órgão"},
	"region":      {"region", "regiao", "região"},
	"description": {"description", "descricao", "descrição"},
}

// Normalize maps a raw key-value item onto the canonical record shape and
// assigns its identity. It returns false when the item has no title, the
// only field whose absence is fatal.
func Normalize(raw map[string]any, group, source string) (*Opportunity, bool) {
	title := truncate(pick(raw, "title"), maxTitleLen)
	if title == "" {
		return nil, false
	}

	o := &Opportunity{
		Group:     NormalizeGroup(group),
		Source:    source,
		Title:     title,
		Link:      pick(raw, "link"),
		Deadline:  pick(raw, "deadline"),
		Published: pick(raw, "published"),
		Agency:    pick(raw, "agency"),
		Region:    pick(raw, "region"),
	}

	extras := make(map[string]string)
	if v := pick(raw, "value"); v != "" {
		extras["value"] = v
	}
	if d := pick(raw, "description"); d != "" {
		extras["description"] = d
	}
	if b, ok := raw["raw"].(map[string]any); ok {
		for k, v := range b {
			extras[k] = stringify(v)
		}
	}
	if len(extras) > 0 {
		o.Raw = extras
	}

	o.UID = UID(o.Group, o.Source, o.Title, o.Link)
	return o, true
}

func pick(raw map[string]any, field string) string {
	for _, alias := range fieldAliases[field] {
		if v, ok := raw[alias]; ok {
			if s := strings.TrimSpace(stringify(v)); s != "" {
				return s
			}
		}
	}
	return ""
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
