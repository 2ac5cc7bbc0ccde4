package store

import (
	"path/filepath"
	"testing"

	"github.com/quintessa/grantwatch/internal/errbus"
	"github.com/quintessa/grantwatch/internal/item"
	"github.com/quintessa/grantwatch/internal/sheet"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	api, err := sheet.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open sheet backend: %v", err)
	}
	s, err := Open(api, errbus.New())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleItem(title string) *item.Opportunity {
	raw := map[string]any{"title": title, "link": "https://example.org/" + title}
	o, _ := item.Normalize(raw, "Governo/Multilaterais", "example.org")
	return o
}

func TestOpenEnsuresHeaders(t *testing.T) {
	s := openTestStore(t)
	header, body, err := s.ReadItems()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(header) != len(item.ItemsHeader) {
		t.Errorf("expected %d header columns, got %d", len(item.ItemsHeader), len(header))
	}
	if len(body) != 0 {
		t.Errorf("expected empty body, got %d rows", len(body))
	}
}

func TestAppendItemsDedup(t *testing.T) {
	s := openTestStore(t)

	added, err := s.AppendItemsDedup([]*item.Opportunity{sampleItem("A"), sampleItem("B")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if added != 2 {
		t.Errorf("expected 2 added, got %d", added)
	}

	// Appending the same items again must insert nothing.
	added, err = s.AppendItemsDedup([]*item.Opportunity{sampleItem("A"), sampleItem("B")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if added != 0 {
		t.Errorf("expected 0 added on replay, got %d", added)
	}

	_, body, _ := s.ReadItems()
	if len(body) != 2 {
		t.Errorf("expected exactly 2 stored rows, got %d", len(body))
	}
}

func TestAppendItemsDedupWithinBatch(t *testing.T) {
	s := openTestStore(t)
	added, _ := s.AppendItemsDedup([]*item.Opportunity{sampleItem("A"), sampleItem("A")})
	if added != 1 {
		t.Errorf("expected in-batch duplicate collapsed, got %d added", added)
	}
}

func TestCacheReflectsWrites(t *testing.T) {
	s := openTestStore(t)
	s.ReadItems() // prime the cache

	s.AppendItemsDedup([]*item.Opportunity{sampleItem("A")})
	_, body, _ := s.ReadItems()
	if len(body) != 1 {
		t.Fatalf("expected append visible after invalidation, got %d rows", len(body))
	}

	uid := body[0][0]
	ok, err := s.UpdateItemByUID(uid, map[string]string{"status": "submetido"})
	if err != nil || !ok {
		t.Fatalf("update failed: ok=%v err=%v", ok, err)
	}
	_, body, _ = s.ReadItems()
	if body[0][12] != "submetido" {
		t.Errorf("expected update visible after invalidation, got %q", body[0][12])
	}

	ok, err = s.DeleteItemByUID(uid)
	if err != nil || !ok {
		t.Fatalf("delete failed: ok=%v err=%v", ok, err)
	}
	_, body, _ = s.ReadItems()
	if len(body) != 0 {
		t.Errorf("expected delete visible after invalidation, got %d rows", len(body))
	}
}

func TestReadItemsIsMemoized(t *testing.T) {
	s := openTestStore(t)
	s.ReadItems()

	// Bypass the store deliberately; the snapshot must stay stale until
	// an invalidating write occurs.
	s.api.AppendRows(SheetItems, [][]string{{"sneaky"}})
	_, body, _ := s.ReadItems()
	if len(body) != 0 {
		t.Fatal("expected memoized snapshot to miss the out-of-band write")
	}

	s.Invalidate()
	_, body, _ = s.ReadItems()
	if len(body) != 1 {
		t.Error("expected explicit invalidation to expose the write")
	}
}

func TestUpdateItemByUIDNotFound(t *testing.T) {
	s := openTestStore(t)
	ok, err := s.UpdateItemByUID("missing", map[string]string{"seen": "true"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected false for missing uid")
	}
}

func TestUpdateItemByUIDNeverTouchesUID(t *testing.T) {
	s := openTestStore(t)
	s.AppendItemsDedup([]*item.Opportunity{sampleItem("A")})
	_, body, _ := s.ReadItems()
	uid := body[0][0]

	s.UpdateItemByUID(uid, map[string]string{"uid": "hijacked", "notes": "ok"})
	_, body, _ = s.ReadItems()
	if body[0][0] != uid {
		t.Error("uid column must never be writable")
	}
	if body[0][13] != "ok" {
		t.Errorf("expected notes updated, got %q", body[0][13])
	}
}

func TestDeleteItemByUIDNotFound(t *testing.T) {
	s := openTestStore(t)
	ok, err := s.DeleteItemByUID("missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected false for missing uid")
	}
}

func TestClearItemsPreservesSchema(t *testing.T) {
	s := openTestStore(t)
	s.AppendItemsDedup([]*item.Opportunity{sampleItem("A"), sampleItem("B")})

	if err := s.ClearItems(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	header, body, _ := s.ReadItems()
	if len(body) != 0 {
		t.Errorf("expected 0 rows after clear, got %d", len(body))
	}
	if len(header) != len(item.ItemsHeader) {
		t.Error("expected header preserved after clear")
	}

	// The store must still accept inserts after a clear.
	added, _ := s.AppendItemsDedup([]*item.Opportunity{sampleItem("A")})
	if added != 1 {
		t.Errorf("expected insert after clear, got %d added", added)
	}
}

func TestLinkLifecycle(t *testing.T) {
	s := openTestStore(t)

	link, err := s.AddLink("https://fapesp.br/chamadas/", "América Latina / Brasil", "FAPESP")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if link.UID == "" {
		t.Fatal("expected link uid")
	}
	if link.Grupo != "América Latina/Brasil" {
		t.Errorf("expected normalized group, got %q", link.Grupo)
	}
	if !link.Ativo {
		t.Error("expected new link to be ativo")
	}

	found, _ := s.FindLink(link.UID)
	if found == nil || found.Nome != "FAPESP" {
		t.Fatalf("expected to find link, got %+v", found)
	}

	ok, _ := s.UpdateLink(link.UID, map[string]string{"ativo": "false"})
	if !ok {
		t.Fatal("expected update to find link")
	}
	found, _ = s.FindLink(link.UID)
	if found.Ativo {
		t.Error("expected link deactivated")
	}

	ok, _ = s.UpdateLinkRunStatus(link.UID, "ok", 7)
	if !ok {
		t.Fatal("expected run status update to find link")
	}
	found, _ = s.FindLink(link.UID)
	if found.LastStatus != "ok" || found.LastItems != "7" {
		t.Errorf("unexpected run status: %+v", found)
	}
	if found.LastRun == "" {
		t.Error("expected last_run to be set")
	}

	ok, _ = s.DeleteLink(link.UID)
	if !ok {
		t.Fatal("expected delete to find link")
	}
	found, _ = s.FindLink(link.UID)
	if found != nil {
		t.Error("expected link gone after delete")
	}
}

func TestAddLinkIdentityIdempotent(t *testing.T) {
	s := openTestStore(t)
	a, _ := s.AddLink("https://x.org", "Governo/Multilaterais", "")
	b, _ := s.AddLink("https://x.org", "Governo/Multilaterais", "")
	if a.UID != b.UID {
		t.Error("expected identical uid for the same (url, group) pair")
	}
}

func TestConfigUpsert(t *testing.T) {
	s := openTestStore(t)

	if err := s.UpsertConfig("min_days", "14"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := s.MinDays(); got != 14 {
		t.Errorf("expected min_days 14, got %d", got)
	}

	// Upsert overwrites in place.
	s.UpsertConfig("min_days", "30")
	cfg, _ := s.ReadConfig()
	if cfg["min_days"] != "30" {
		t.Errorf("expected overwritten value, got %q", cfg["min_days"])
	}
}

func TestMinDaysDefault(t *testing.T) {
	s := openTestStore(t)
	if got := s.MinDays(); got != DefaultMinDays {
		t.Errorf("expected default %d, got %d", DefaultMinDays, got)
	}

	s.UpsertConfig("min_days", "not-a-number")
	if got := s.MinDays(); got != DefaultMinDays {
		t.Errorf("expected default on bad value, got %d", got)
	}
}

func TestGroupRegex(t *testing.T) {
	s := openTestStore(t)

	if err := s.SetGroupRegex("Governo/Multilaterais", "(?i)edital|chamada"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.SetGroupRegex("Fundações e Prêmios", "[invalid"); err == nil {
		t.Error("expected error for invalid pattern")
	}

	patterns, err := s.RegexByGroup()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	re, ok := patterns["Governo/Multilaterais"]
	if !ok {
		t.Fatal("expected pattern for group")
	}
	if !re.MatchString("Edital de chamada") {
		t.Error("expected pattern to match")
	}
}

func TestLogsTail(t *testing.T) {
	s := openTestStore(t)
	for i := 0; i < 5; i++ {
		s.Log("INFO", "entry")
	}

	tail, err := s.LogsTail(3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tail) != 4 { // header + 3 entries
		t.Fatalf("expected header plus 3 entries, got %d", len(tail))
	}
	if tail[0][0] != "ts" {
		t.Errorf("expected header row first, got %v", tail[0])
	}

	all, _ := s.LogsTail(100)
	if len(all) != 6 { // header + 5 entries
		t.Errorf("expected header plus 5 entries, got %d", len(all))
	}
}

func TestDeleteOnEmptySheet(t *testing.T) {
	s := openTestStore(t)
	if err := s.api.Clear(SheetItems); err != nil {
		t.Fatal(err)
	}
	if err := s.api.Clear(SheetLinks); err != nil {
		t.Fatal(err)
	}
	s.Invalidate()

	ok, err := s.DeleteItemByUID("missing")
	if err != nil || ok {
		t.Errorf("DeleteItemByUID on empty sheet = %v, %v; want false, nil", ok, err)
	}
	ok, err = s.DeleteLink("missing")
	if err != nil || ok {
		t.Errorf("DeleteLink on empty sheet = %v, %v; want false, nil", ok, err)
	}
}
