package item

import (
	"testing"
	"time"
)

func TestUIDDeterministic(t *testing.T) {
	a := UID("Governo/Multilaterais", "PNCP", "Edital 42", "https://pncp.gov.br/42")
	b := UID("Governo/Multilaterais", "PNCP", "Edital 42", "https://pncp.gov.br/42")
	if a != b {
		t.Errorf("expected identical uids, got %q and %q", a, b)
	}
	if len(a) != 16 {
		t.Errorf("expected 16-char uid, got %d chars", len(a))
	}
}

func TestUIDSensitiveToEveryField(t *testing.T) {
	base := UID("g", "s", "t", "l")
	variants := []string{
		UID("g2", "s", "t", "l"),
		UID("g", "s2", "t", "l"),
		UID("g", "s", "t2", "l"),
		UID("g", "s", "t", "l2"),
	}
	for i, v := range variants {
		if v == base {
			t.Errorf("variant %d collided with base uid", i)
		}
	}
}

func TestLinkUIDIdempotent(t *testing.T) {
	a := LinkUID("https://fapesp.br/chamadas/", "América Latina/Brasil")
	b := LinkUID("https://fapesp.br/chamadas/", "América Latina/Brasil")
	if a != b {
		t.Error("expected identical link uids for the same (url, group) pair")
	}
}

func TestNormalizeEnglishKeys(t *testing.T) {
	raw := map[string]any{
		"title":    "Research Grant",
		"link":     "https://example.org/grant",
		"deadline": "2026-12-31",
		"agency":   "Example Foundation",
	}
	o, ok := Normalize(raw, "Fundações e Prêmios", "example.org")
	if !ok {
		t.Fatal("expected item to be accepted")
	}
	if o.Title != "Research Grant" {
		t.Errorf("unexpected title %q", o.Title)
	}
	if o.Deadline != "2026-12-31" {
		t.Errorf("unexpected deadline %q", o.Deadline)
	}
	if o.UID == "" {
		t.Error("expected uid to be assigned")
	}
}

func TestNormalizePortugueseAliases(t *testing.T) {
	raw := map[string]any{
		"titulo":    "Chamada Pública 07/2026",
		"url":       "https://finep.gov.br/chamada-07",
		"prazo":     "2026-10-01",
		"publicado": "2026-08-01",
		"orgao":     "FINEP",
		"valor":     "R$ 500.000",
		"descricao": "Apoio a projetos de inovação",
	}
	o, ok := Normalize(raw, "América Latina/Brasil", "finep.gov.br")
	if !ok {
		t.Fatal("expected item to be accepted")
	}
	if o.Title != "Chamada Pública 07/2026" {
		t.Errorf("unexpected title %q", o.Title)
	}
	if o.Link != "https://finep.gov.br/chamada-07" {
		t.Errorf("unexpected link %q", o.Link)
	}
	if o.Agency != "FINEP" {
		t.Errorf("unexpected agency %q", o.Agency)
	}
	if o.Raw["value"] != "R$ 500.000" {
		t.Errorf("expected value in raw bag, got %v", o.Raw)
	}
	if o.Raw["description"] != "Apoio a projetos de inovação" {
		t.Errorf("expected description in raw bag, got %v", o.Raw)
	}
}

func TestNormalizeAliasPrecedence(t *testing.T) {
	raw := map[string]any{"title": "English", "titulo": "Português"}
	o, _ := Normalize(raw, "Governo/Multilaterais", "src")
	if o.Title != "English" {
		t.Errorf("expected first alias to win, got %q", o.Title)
	}
}

func TestNormalizeRejectsEmptyTitle(t *testing.T) {
	raw := map[string]any{"link": "https://example.org", "titulo": "   "}
	if _, ok := Normalize(raw, "Governo/Multilaterais", "src"); ok {
		t.Error("expected item without title to be rejected")
	}
}

func TestNormalizeTruncatesTitle(t *testing.T) {
	long := make([]rune, 400)
	for i := range long {
		long[i] = 'a'
	}
	raw := map[string]any{"title": string(long)}
	o, _ := Normalize(raw, "Governo/Multilaterais", "src")
	if len([]rune(o.Title)) != 300 {
		t.Errorf("expected title truncated to 300 runes, got %d", len([]rune(o.Title)))
	}
}

func TestNormalizeSameItemSameUID(t *testing.T) {
	raw := map[string]any{"title": "Edital", "link": "https://x.org"}
	a, _ := Normalize(raw, "Governo/Multilaterais", "x.org")
	b, _ := Normalize(raw, "Governo / Multilaterais", "x.org")
	if a.UID != b.UID {
		t.Error("expected group separator variants to yield the same uid")
	}
}

func TestNormalizeGroupVariants(t *testing.T) {
	cases := []string{
		"Governo/Multilaterais",
		"Governo / Multilaterais",
		"Governo /Multilaterais",
		"Governo/ Multilaterais",
		"  Governo/Multilaterais  ",
	}
	for _, c := range cases {
		if got := NormalizeGroup(c); got != "Governo/Multilaterais" {
			t.Errorf("NormalizeGroup(%q) = %q", c, got)
		}
	}
}

func TestFilterGroups(t *testing.T) {
	got := FilterGroups([]string{
		"Governo / Multilaterais",
		"Governo/Multilaterais",
		"Algo Inventado",
		"Fundações e Prêmios",
	})
	if len(got) != 2 {
		t.Fatalf("expected 2 groups, got %v", got)
	}
	if got[0] != "Fundações e Prêmios" || got[1] != "Governo/Multilaterais" {
		t.Errorf("unexpected order: %v", got)
	}
}

func TestFilterGroupsFallback(t *testing.T) {
	got := FilterGroups([]string{"Nada", "Disso", "Existe"})
	if len(got) != len(CanonicalGroups) {
		t.Errorf("expected full whitelist fallback, got %v", got)
	}
}

func TestWithinWindowBoundary(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	atThreshold := now.AddDate(0, 0, 7).Format("2006-01-02")
	if !WithinWindow(atThreshold, 7, now) {
		t.Error("deadline exactly min_days out must be included")
	}

	oneShort := now.AddDate(0, 0, 6).Format("2006-01-02")
	if WithinWindow(oneShort, 7, now) {
		t.Error("deadline min_days-1 out must be excluded")
	}
}

func TestWithinWindowAbsentDeadline(t *testing.T) {
	if !WithinWindow("", 21, time.Now()) {
		t.Error("absent deadline must pass for manual review")
	}
	if !WithinWindow("not-a-date", 21, time.Now()) {
		t.Error("unparseable deadline must pass for manual review")
	}
}

func TestRowLayout(t *testing.T) {
	o := &Opportunity{
		UID:   "abc123",
		Group: "Governo/Multilaterais",
		Title: "Edital",
		Raw:   map[string]string{"value": "R$ 100"},
	}
	row := o.Row(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC))
	if len(row) != len(ItemsHeader) {
		t.Fatalf("expected %d columns, got %d", len(ItemsHeader), len(row))
	}
	if row[0] != "abc123" {
		t.Error("expected uid in column 0")
	}
	if row[12] != "pendente" {
		t.Errorf("expected default status 'pendente', got %q", row[12])
	}
	if row[9] == "" {
		t.Error("expected raw_json to be populated")
	}
}

func TestValueParsing(t *testing.T) {
	cases := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{"R$ 50.000,00", 50000, true},
		{"R$ 1.200.000", 1200000, true},
		{"100000", 100000, true},
		{"100000.50", 100000.50, true},
		{"até R$ 300 mil", 300, true},
		{"a definir", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		o := &Opportunity{Raw: map[string]string{"value": tc.raw}}
		got, ok := o.Value()
		if ok != tc.ok || got != tc.want {
			t.Errorf("Value(%q) = %v, %v; want %v, %v", tc.raw, got, ok, tc.want, tc.ok)
		}
	}
}
