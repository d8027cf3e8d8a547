package tools

import "strings"

// ExtractJSONObject returns the first balanced {...} substring of s,
// tracking brace depth, string state, and escape state so that braces
// embedded in JSON string values (including escaped quotes) never flip
// match state. Markdown code fences need no special handling: they
// contain no brace characters of their own, so scanning for the first
// literal '{' already skips straight through them.
//
// It reports false if s contains no balanced object.
func ExtractJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	for start != -1 {
		if end, ok := balancedEnd(s, start); ok {
			return s[start : end+1], true
		}
		next := strings.IndexByte(s[start+1:], '{')
		if next == -1 {
			return "", false
		}
		start = start + 1 + next
	}
	return "", false
}

// balancedEnd scans s starting at start (which must hold '{') and returns
// the index of the matching closing brace, or false if s ends first.
func balancedEnd(s string, start int) (int, bool) {
	depth := 0
	inString := false
	escape := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if escape {
			escape = false
			continue
		}
		switch {
		case inString:
			switch c {
			case '\\':
				escape = true
			case '"':
				inString = false
			}
		default:
			switch c {
			case '"':
				inString = true
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return i, true
				}
			}
		}
	}
	return 0, false
}
