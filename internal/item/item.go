// Package item defines the canonical opportunity record shared by every
// ingestion path, plus the normalization and identity rules that map raw
// adapter or model output onto it.
package item

import (
	"encoding/json"
	"time"
)

// ItemsHeader is the column layout of the items sheet. Column 0 must stay
// uid: deduplication keys on it by convention.
var ItemsHeader = []string{
	"uid",
	"group",
	"source",
	"title",
	"link",
	"deadline_iso",
	"published_iso",
	"agency",
	"region",
	"raw_json",
	"created_at",
	"seen",
	"status",
	"notes",
	"do_not_show",
}

// StatusChoices are the reviewer-managed workflow states.
var StatusChoices = []string{"pendente", "verificando", "submetido", "não submetido"}

// StatusColors maps each status to its display color, consumed by the UI.
var StatusColors = map[string]string{
	"pendente":      "#FFD166",
	"verificando":   "#118AB2",
	"submetido":     "#06D6A0",
	"não submetido": "#EF476F",
}

// Opportunity is the canonical record produced by both ingestion paths.
// Reviewer-managed fields (seen/status/notes/do_not_show) are added at
// persistence time and live only in the stored row.
type Opportunity struct {
	UID       string            `json:"uid"`
	Group     string            `json:"group"`
	Source    string            `json:"source"`
	Title     string            `json:"title"`
	Link      string            `json:"link"`
	Deadline  string            `json:"deadline"`  // YYYY-MM-DD or empty
	Published string            `json:"published"` // YYYY-MM-DD or empty
	Agency    string            `json:"agency"`
	Region    string            `json:"region"`
	Raw       map[string]string `json:"raw,omitempty"`
}

// Row renders the opportunity as an items-sheet row in ItemsHeader order,
// with operator fields at their defaults.
func (o *Opportunity) Row(now time.Time) []string {
	rawJSON := ""
	if len(o.Raw) > 0 {
		if b, err := json.Marshal(o.Raw); err == nil {
			rawJSON = string(b)
		}
	}
	return []string{
		o.UID,
		o.Group,
		o.Source,
		o.Title,
		o.Link,
		o.Deadline,
		o.Published,
		o.Agency,
		o.Region,
		rawJSON,
		now.UTC().Format(time.RFC3339),
		"false",      // seen
		"pendente",   // status
		"",           // notes
		"false",      // do_not_show
	}
}

// WithinWindow reports whether an item's deadline is at least minDays days
// in the future relative to now. Absent or unparseable deadlines pass: they
// are kept for manual review rather than silently dropped.
func WithinWindow(deadlineISO string, minDays int, now time.Time) bool {
	if deadlineISO == "" {
		return true
	}
	deadline, err := time.Parse("2006-01-02", deadlineISO)
	if err != nil {
		return true
	}
	threshold := now.AddDate(0, 0, minDays).Format("2006-01-02")
	return deadline.Format("2006-01-02") >= threshold
}
