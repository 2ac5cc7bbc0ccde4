package sheet

import (
	"path/filepath"
	"testing"
)

// backends lists every API implementation under test; all must behave
// identically through the boundary.
func backends(t *testing.T) map[string]API {
	t.Helper()
	dir := t.TempDir()

	sq, err := OpenSQLite(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("failed to open sqlite backend: %v", err)
	}
	t.Cleanup(func() { sq.Close() })

	wb, err := OpenWorkbook(filepath.Join(dir, "test.xlsx"))
	if err != nil {
		t.Fatalf("failed to open workbook backend: %v", err)
	}
	t.Cleanup(func() { wb.Close() })

	return map[string]API{"sqlite": sq, "xlsx": wb}
}

func TestEnsureHeaderCreates(t *testing.T) {
	for name, api := range backends(t) {
		t.Run(name, func(t *testing.T) {
			header := []string{"uid", "url", "grupo"}
			if err := api.EnsureHeader("links", header); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			rows, err := api.GetAllRows("links")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(rows) != 1 {
				t.Fatalf("expected 1 header row, got %d", len(rows))
			}
			if rows[0][0] != "uid" || rows[0][2] != "grupo" {
				t.Errorf("unexpected header: %v", rows[0])
			}
		})
	}
}

func TestEnsureHeaderMergesNewColumns(t *testing.T) {
	for name, api := range backends(t) {
		t.Run(name, func(t *testing.T) {
			api.EnsureHeader("items", []string{"uid", "title"})
			if err := api.EnsureHeader("items", []string{"uid", "title", "status"}); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			rows, _ := api.GetAllRows("items")
			if len(rows[0]) != 3 || rows[0][2] != "status" {
				t.Errorf("expected merged header with 'status', got %v", rows[0])
			}
		})
	}
}

func TestAppendAndRead(t *testing.T) {
	for name, api := range backends(t) {
		t.Run(name, func(t *testing.T) {
			api.EnsureHeader("items", []string{"uid", "title"})
			err := api.AppendRows("items", [][]string{
				{"u1", "First"},
				{"u2", "Second"},
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			rows, _ := api.GetAllRows("items")
			if len(rows) != 3 {
				t.Fatalf("expected 3 rows, got %d", len(rows))
			}
			if rows[1][0] != "u1" || rows[2][1] != "Second" {
				t.Errorf("unexpected rows: %v", rows)
			}
		})
	}
}

func TestUpdateCell(t *testing.T) {
	for name, api := range backends(t) {
		t.Run(name, func(t *testing.T) {
			api.EnsureHeader("items", []string{"uid", "status"})
			api.AppendRows("items", [][]string{{"u1", "pendente"}})

			if err := api.UpdateCell("items", 2, 2, "submetido"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			rows, _ := api.GetAllRows("items")
			if rows[1][1] != "submetido" {
				t.Errorf("expected updated cell, got %v", rows[1])
			}
		})
	}
}

func TestUpdateCellBeyondRowWidth(t *testing.T) {
	for name, api := range backends(t) {
		t.Run(name, func(t *testing.T) {
			api.EnsureHeader("items", []string{"uid"})
			api.AppendRows("items", [][]string{{"u1"}})

			if err := api.UpdateCell("items", 2, 4, "late-column"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			rows, _ := api.GetAllRows("items")
			if len(rows[1]) < 4 || rows[1][3] != "late-column" {
				t.Errorf("expected padded row with value, got %v", rows[1])
			}
		})
	}
}

func TestDeleteRow(t *testing.T) {
	for name, api := range backends(t) {
		t.Run(name, func(t *testing.T) {
			api.EnsureHeader("items", []string{"uid"})
			api.AppendRows("items", [][]string{{"u1"}, {"u2"}, {"u3"}})

			if err := api.DeleteRow("items", 3); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			rows, _ := api.GetAllRows("items")
			if len(rows) != 3 {
				t.Fatalf("expected 3 rows after delete, got %d", len(rows))
			}
			if rows[1][0] != "u1" || rows[2][0] != "u3" {
				t.Errorf("expected u2 removed, got %v", rows)
			}
		})
	}
}

func TestClear(t *testing.T) {
	for name, api := range backends(t) {
		t.Run(name, func(t *testing.T) {
			api.EnsureHeader("items", []string{"uid"})
			api.AppendRows("items", [][]string{{"u1"}, {"u2"}})

			if err := api.Clear("items"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			rows, _ := api.GetAllRows("items")
			if len(rows) != 0 {
				t.Errorf("expected empty sheet, got %d rows", len(rows))
			}
		})
	}
}

func TestGetAllRowsMissingSheet(t *testing.T) {
	for name, api := range backends(t) {
		t.Run(name, func(t *testing.T) {
			rows, err := api.GetAllRows("nonexistent")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(rows) != 0 {
				t.Errorf("expected no rows, got %v", rows)
			}
		})
	}
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persist.db")
	sq, err := OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	sq.EnsureHeader("items", []string{"uid"})
	sq.AppendRows("items", [][]string{{"u1"}})
	sq.Close()

	sq2, err := OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	defer sq2.Close()
	rows, _ := sq2.GetAllRows("items")
	if len(rows) != 2 {
		t.Errorf("expected 2 rows after reopen, got %d", len(rows))
	}
}

func TestWorkbookPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persist.xlsx")
	wb, err := OpenWorkbook(path)
	if err != nil {
		t.Fatal(err)
	}
	wb.EnsureHeader("items", []string{"uid"})
	wb.AppendRows("items", [][]string{{"u1"}})
	wb.Close()

	wb2, err := OpenWorkbook(path)
	if err != nil {
		t.Fatal(err)
	}
	defer wb2.Close()
	rows, _ := wb2.GetAllRows("items")
	if len(rows) != 2 {
		t.Errorf("expected 2 rows after reopen, got %d", len(rows))
	}
}
