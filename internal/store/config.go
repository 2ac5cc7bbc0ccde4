package store

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DefaultMinDays is the deadline window applied when the config sheet has
// no min_days entry.
const DefaultMinDays = 21

// regexKeyPrefix namespaces the per-group filter patterns in the config
// sheet, e.g. "regex:Governo/Multilaterais".
const regexKeyPrefix = "regex:"

// ReadConfig returns the config sheet as a key→value map.
func (s *Store) ReadConfig() (map[string]string, error) {
	rows, err := s.api.GetAllRows(SheetConfig)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	data := make(map[string]string)
	for _, r := range rows[1:] {
		if len(r) >= 2 && r[0] != "" {
			data[r[0]] = r[1]
		}
	}
	return data, nil
}

// UpsertConfig updates the value of a key, creating the row when absent.
func (s *Store) UpsertConfig(key, value string) error {
	rows, err := s.api.GetAllRows(SheetConfig)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	for i, r := range rows[1:] {
		if len(r) > 0 && r[0] == key {
			rowNum := i + 2
			if err := s.write(func() error {
				return s.api.UpdateCell(SheetConfig, rowNum, 2, value)
			}); err != nil {
				return fmt.Errorf("updating config %s: %w", key, err)
			}
			return nil
		}
	}
	if err := s.write(func() error {
		return s.api.AppendRows(SheetConfig, [][]string{{key, value}})
	}); err != nil {
		return fmt.Errorf("adding config %s: %w", key, err)
	}
	return nil
}

// SetGroupRegex stores the filter pattern for one group. The pattern is
// compiled first so a broken regex never reaches the sheet.
func (s *Store) SetGroupRegex(group, pattern string) error {
	if pattern != "" {
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Errorf("invalid regex for group %s: %w", group, err)
		}
	}
	return s.UpsertConfig(regexKeyPrefix+group, pattern)
}

// RegexByGroup returns the compiled per-group filter patterns. Absent or
// uncompilable patterns mean "match everything" for that group; a bad
// pattern is reported on the bus and skipped.
func (s *Store) RegexByGroup() (map[string]*regexp.Regexp, error) {
	cfg, err := s.ReadConfig()
	if err != nil {
		return nil, err
	}
	out := make(map[string]*regexp.Regexp)
	for key, value := range cfg {
		if !strings.HasPrefix(key, regexKeyPrefix) || value == "" {
			continue
		}
		group := strings.TrimPrefix(key, regexKeyPrefix)
		re, err := regexp.Compile(value)
		if err != nil {
			s.bus.Push("config regex "+group, err)
			continue
		}
		out[group] = re
	}
	return out, nil
}

// MinDays returns the configured deadline window, falling back to the
// documented default.
func (s *Store) MinDays() int {
	cfg, err := s.ReadConfig()
	if err != nil {
		s.bus.Push("config min_days", err)
		return DefaultMinDays
	}
	v, ok := cfg["min_days"]
	if !ok {
		return DefaultMinDays
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return DefaultMinDays
	}
	return n
}

// MaxValue returns the optional maximum monetary value hint, zero when
// unset.
func (s *Store) MaxValue() float64 {
	cfg, err := s.ReadConfig()
	if err != nil {
		return 0
	}
	v, ok := cfg["max_value"]
	if !ok {
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}
