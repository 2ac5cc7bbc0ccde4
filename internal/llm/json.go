package llm

import (
	"encoding/json"
	"log"
	"strings"
)

// ParseItemsResponse parses a model response expected to contain a JSON
// array of objects. Markdown code fences are stripped first; if the whole
// text is not valid JSON, the first balanced [...] block is tried as a
// fallback. A single top-level object is treated as a one-element array.
// Returns nil if nothing parseable is found.
func ParseItemsResponse(text string) []map[string]any {
	text = stripFences(text)
	if text == "" {
		return nil
	}

	if items := parseItems(text); items != nil {
		return items
	}

	if block := firstBalancedArray(text); block != "" {
		if items := parseItems(block); items != nil {
			return items
		}
	}

	log.Printf("Failed to parse LLM response as a JSON item array")
	return nil
}

func parseItems(text string) []map[string]any {
	var items []map[string]any
	if err := json.Unmarshal([]byte(text), &items); err == nil {
		return items
	}

	var single map[string]any
	if err := json.Unmarshal([]byte(text), &single); err == nil {
		return []map[string]any{single}
	}

	return nil
}

// stripFences removes a surrounding markdown code block, if present.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	lines := strings.Split(text, "\n")
	endIdx := len(lines) - 1
	for i := len(lines) - 1; i > 0; i-- {
		if strings.TrimSpace(lines[i]) == "```" {
			endIdx = i
			break
		}
	}
	return strings.TrimSpace(strings.Join(lines[1:endIdx], "\n"))
}

// firstBalancedArray extracts the first bracket-balanced [...] block,
// ignoring brackets inside JSON string literals.
func firstBalancedArray(text string) string {
	start := strings.IndexByte(text, '[')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}
