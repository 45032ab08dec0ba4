package expand

import "strings"

// Braces performs brace expansion on a word: "a{b,c}d" becomes "abd" and
// "acd", recursively for nested braces (spec §4.2 step 6). Malformed brace
// expansions (no comma, unbalanced) are left untouched, matching the
// teacher's policy of never failing brace expansion.
func Braces(word string) []string {
	open := strings.IndexByte(word, '{')
	if open < 0 {
		return []string{word}
	}
	close, depth := -1, 0
	for i := open; i < len(word); i++ {
		switch word[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				close = i
			}
		}
		if close >= 0 {
			break
		}
	}
	if close < 0 {
		return []string{word}
	}
	inner := word[open+1 : close]
	parts := splitTopLevelComma(inner)
	if len(parts) < 2 {
		// no comma at this brace level: not a valid brace group, leave as-is
		return []string{word}
	}
	prefix, suffix := word[:open], word[close+1:]
	var out []string
	for _, part := range parts {
		for _, tail := range Braces(prefix + part + suffix) {
			out = append(out, tail)
		}
	}
	return out
}

// splitTopLevelComma splits s on commas that are not nested inside an
// inner {...} group.
func splitTopLevelComma(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}
