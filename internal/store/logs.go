package store

import (
	"fmt"
	"time"
)

// Log appends a run-log row. Log failures are pushed to the bus and
// swallowed: diagnostics must never break the operation being logged.
func (s *Store) Log(level, msg string) {
	err := s.api.AppendRows(SheetLogs, [][]string{{
		time.Now().UTC().Format(time.RFC3339),
		level,
		msg,
	}})
	if err != nil {
		s.bus.Push("sheet_log", err)
	}
}

// LogsTail returns the header plus the last limit log rows.
func (s *Store) LogsTail(limit int) ([][]string, error) {
	rows, err := s.api.GetAllRows(SheetLogs)
	if err != nil {
		return nil, fmt.Errorf("reading logs: %w", err)
	}
	if len(rows) == 0 {
		return rows, nil
	}
	header, body := rows[0], rows[1:]
	if len(body) > limit {
		body = body[len(body)-limit:]
	}
	return append([][]string{header}, body...), nil
}
