package parsers

import (
	"encoding/json"
	"strings"
)

// ExtractJSONObject locates a JSON value in free-form model output.
// Text that is already valid JSON is returned as is. Otherwise every '{' is
// tried in turn as the start of an object; the scan tracks string literals and
// escapes so braces inside strings never affect nesting depth.
func ExtractJSONObject(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", false
	}
	if json.Valid([]byte(trimmed)) {
		return trimmed, true
	}

	start := strings.IndexByte(text, '{')
	for start >= 0 {
		if end := scanObject(text, start); end > 0 {
			candidate := text[start:end]
			if json.Valid([]byte(candidate)) {
				return candidate, true
			}
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}

// scanObject returns the index just past the brace closing the object that
// opens at s[start], or -1 when it never closes.
func scanObject(s string, start int) int {
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
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
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return -1
}
