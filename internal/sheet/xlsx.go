package sheet

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// Workbook stores worksheets in an xlsx file, the format the review team
// shares. Every mutation is saved immediately so a concurrent reader of
// the file never sees a half-written run.
type Workbook struct {
	f    *excelize.File
	path string
}

// OpenWorkbook creates or opens the workbook at the given path.
func OpenWorkbook(path string) (*Workbook, error) {
	if _, err := os.Stat(path); err == nil {
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("opening workbook: %w", err)
		}
		return &Workbook{f: f, path: path}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	f := excelize.NewFile()
	if err := f.SaveAs(path); err != nil {
		return nil, fmt.Errorf("creating workbook: %w", err)
	}
	return &Workbook{f: f, path: path}, nil
}

// Close closes the underlying file handle without saving.
func (w *Workbook) Close() error {
	return w.f.Close()
}

// Path returns the workbook file path.
func (w *Workbook) Path() string {
	return w.path
}

func (w *Workbook) GetAllRows(sheet string) ([][]string, error) {
	idx, err := w.f.GetSheetIndex(sheet)
	if err != nil {
		return nil, err
	}
	if idx < 0 {
		return nil, nil
	}
	rows, err := w.f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", sheet, err)
	}
	return rows, nil
}

func (w *Workbook) AppendRows(sheet string, newRows [][]string) error {
	if len(newRows) == 0 {
		return nil
	}
	if err := w.ensureSheet(sheet); err != nil {
		return err
	}
	existing, err := w.f.GetRows(sheet)
	if err != nil {
		return err
	}
	next := len(existing) + 1
	for i, r := range newRows {
		cell, err := excelize.CoordinatesToCellName(1, next+i)
		if err != nil {
			return err
		}
		values := make([]any, len(r))
		for j, v := range r {
			values[j] = v
		}
		if err := w.f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("appending to sheet %s: %w", sheet, err)
		}
	}
	return w.f.Save()
}

func (w *Workbook) UpdateCell(sheet string, row, col int, value string) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := w.f.SetCellValue(sheet, cell, value); err != nil {
		return fmt.Errorf("updating %s!%s: %w", sheet, cell, err)
	}
	return w.f.Save()
}

func (w *Workbook) DeleteRow(sheet string, row int) error {
	if err := w.f.RemoveRow(sheet, row); err != nil {
		return fmt.Errorf("deleting row %d of %s: %w", row, sheet, err)
	}
	return w.f.Save()
}

func (w *Workbook) Clear(sheet string) error {
	rows, err := w.GetAllRows(sheet)
	if err != nil {
		return err
	}
	for i := len(rows); i > 0; i-- {
		if err := w.f.RemoveRow(sheet, i); err != nil {
			return fmt.Errorf("clearing sheet %s: %w", sheet, err)
		}
	}
	return w.f.Save()
}

func (w *Workbook) EnsureHeader(sheet string, header []string) error {
	if err := w.ensureSheet(sheet); err != nil {
		return err
	}
	rows, err := w.f.GetRows(sheet)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return w.AppendRows(sheet, [][]string{header})
	}

	merged, changed := mergeHeader(rows[0], header)
	if !changed {
		return nil
	}
	for i, v := range merged {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := w.f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return w.f.Save()
}

func (w *Workbook) ensureSheet(sheet string) error {
	idx, err := w.f.GetSheetIndex(sheet)
	if err != nil {
		return err
	}
	if idx >= 0 {
		return nil
	}
	if _, err := w.f.NewSheet(sheet); err != nil {
		return fmt.Errorf("creating sheet %s: %w", sheet, err)
	}
	return nil
}
