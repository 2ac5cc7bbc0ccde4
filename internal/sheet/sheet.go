// Package sheet defines the tabular-store boundary: a small set of
// worksheet operations the store consumes but does not define. Two
// backends exist, a local SQLite file for single-user mode and an xlsx
// workbook for the shared-spreadsheet deployment.
package sheet

// API is the worksheet contract. Rows and columns are 1-based, matching
// spreadsheet conventions; row 1 is the header.
type API interface {
	// GetAllRows returns every row of the sheet, header included.
	GetAllRows(sheet string) ([][]string, error)
	// AppendRows appends rows after the current last row.
	AppendRows(sheet string, rows [][]string) error
	// UpdateCell overwrites a single cell.
	UpdateCell(sheet string, row, col int, value string) error
	// DeleteRow removes one row, shifting later rows up.
	DeleteRow(sheet string, row int) error
	// Clear removes every row of the sheet, header included.
	Clear(sheet string) error
	// EnsureHeader creates the sheet with the header if missing, and
	// appends any header columns not yet present.
	EnsureHeader(sheet string, header []string) error
	Close() error
}

// mergeHeader appends the missing wanted columns to an existing header,
// preserving existing order so stored rows keep their column meaning.
func mergeHeader(existing, wanted []string) ([]string, bool) {
	have := make(map[string]bool, len(existing))
	for _, h := range existing {
		have[h] = true
	}
	merged := append([]string(nil), existing...)
	changed := false
	for _, h := range wanted {
		if !have[h] {
			merged = append(merged, h)
			changed = true
		}
	}
	return merged, changed
}
