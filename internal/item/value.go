package item

import (
	"strconv"
	"strings"
)

// Value parses the monetary value captured in the raw bag, if any.
// Accepts plain numbers and Brazilian currency formatting
// ("R$ 50.000,00"). Returns false when absent or unparseable.
func (o *Opportunity) Value() (float64, bool) {
	s := strings.TrimSpace(o.Raw["value"])
	if s == "" {
		return 0, false
	}

	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' || r == '.' || r == ',' {
			b.WriteRune(r)
		}
	}
	s = b.String()
	if s == "" {
		return 0, false
	}

	// "50.000,00" style: dots are thousands separators.
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	} else if strings.Count(s, ".") > 1 || dotGroupsOfThree(s) {
		// "1.200.000" style, no cents.
		s = strings.ReplaceAll(s, ".", "")
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// dotGroupsOfThree reports whether s looks like a dot-separated
// thousands grouping ("1.200" but not "1.2").
func dotGroupsOfThree(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) < 2 {
		return false
	}
	for _, p := range parts[1:] {
		if len(p) != 3 {
			return false
		}
	}
	return true
}
