package tabular

import "strings"

// NormalizeHeader lower-cases s and drops every rune that is not an ASCII
// letter or digit, so "Food Cost %", "food_cost" and "FOODCOST" compare equal.
func NormalizeHeader(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// HeaderMatches reports whether header denotes field once both are normalized.
func HeaderMatches(header, field string) bool {
	key := NormalizeHeader(field)
	return key != "" && NormalizeHeader(header) == key
}
