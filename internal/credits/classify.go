package credits

import "strings"

// Classify maps raw role text to a category. Text that normalizes to nothing
// yields None; anything else falls through to Other at worst.
func Classify(role string) Category {
	if strings.TrimSpace(role) == "" {
		return None
	}
	normalized := Normalize(role)
	if normalized == "" {
		return None
	}
	for _, key := range precedence {
		info, _ := Lookup(key)
		if info.Matches(normalized) {
			return key
		}
	}
	return Other
}
