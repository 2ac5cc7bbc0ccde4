package sheet

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLite stores worksheets as ordered JSON-encoded rows in a local
// database file. Row order is insertion order, like a real worksheet.
type SQLite struct {
	conn *sql.DB
	path string
}

// OpenSQLite creates or opens the sheet database at the given path.
func OpenSQLite(dbPath string) (*SQLite, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	if err := migrate(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	return &SQLite{conn: conn, path: dbPath}, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.conn.Close()
}

// Path returns the database file path.
func (s *SQLite) Path() string {
	return s.path
}

func (s *SQLite) GetAllRows(sheet string) ([][]string, error) {
	rows, err := s.conn.Query(
		"SELECT cols FROM sheet_rows WHERE sheet = ? ORDER BY id", sheet,
	)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", sheet, err)
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var cols []string
		if err := json.Unmarshal([]byte(raw), &cols); err != nil {
			return nil, fmt.Errorf("decoding row in sheet %s: %w", sheet, err)
		}
		out = append(out, cols)
	}
	return out, rows.Err()
}

func (s *SQLite) AppendRows(sheet string, newRows [][]string) error {
	if len(newRows) == 0 {
		return nil
	}
	tx, err := s.conn.Begin()
	if err != nil {
		return err
	}
	for _, r := range newRows {
		raw, err := json.Marshal(r)
		if err != nil {
			tx.Rollback()
			return err
		}
		if _, err := tx.Exec(
			"INSERT INTO sheet_rows (sheet, cols) VALUES (?, ?)", sheet, raw,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("appending to sheet %s: %w", sheet, err)
		}
	}
	return tx.Commit()
}

func (s *SQLite) UpdateCell(sheet string, row, col int, value string) error {
	id, cols, err := s.nthRow(sheet, row)
	if err != nil {
		return err
	}
	for len(cols) < col {
		cols = append(cols, "")
	}
	cols[col-1] = value

	raw, err := json.Marshal(cols)
	if err != nil {
		return err
	}
	_, err = s.conn.Exec("UPDATE sheet_rows SET cols = ? WHERE id = ?", raw, id)
	return err
}

func (s *SQLite) DeleteRow(sheet string, row int) error {
	id, _, err := s.nthRow(sheet, row)
	if err != nil {
		return err
	}
	_, err = s.conn.Exec("DELETE FROM sheet_rows WHERE id = ?", id)
	return err
}

func (s *SQLite) Clear(sheet string) error {
	_, err := s.conn.Exec("DELETE FROM sheet_rows WHERE sheet = ?", sheet)
	return err
}

func (s *SQLite) EnsureHeader(sheet string, header []string) error {
	rows, err := s.GetAllRows(sheet)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return s.AppendRows(sheet, [][]string{header})
	}

	merged, changed := mergeHeader(rows[0], header)
	if !changed {
		return nil
	}
	for i, v := range merged {
		if err := s.UpdateCell(sheet, 1, i+1, v); err != nil {
			return err
		}
	}
	return nil
}

// nthRow resolves a 1-based row number to its rowid and current columns.
func (s *SQLite) nthRow(sheet string, row int) (int64, []string, error) {
	if row < 1 {
		return 0, nil, fmt.Errorf("sheet %s: invalid row %d", sheet, row)
	}
	var id int64
	var raw string
	err := s.conn.QueryRow(
		"SELECT id, cols FROM sheet_rows WHERE sheet = ? ORDER BY id LIMIT 1 OFFSET ?",
		sheet, row-1,
	).Scan(&id, &raw)
	if err == sql.ErrNoRows {
		return 0, nil, fmt.Errorf("sheet %s: row %d not found", sheet, row)
	}
	if err != nil {
		return 0, nil, err
	}
	var cols []string
	if err := json.Unmarshal([]byte(raw), &cols); err != nil {
		return 0, nil, err
	}
	return id, cols, nil
}
