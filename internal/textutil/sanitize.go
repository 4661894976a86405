package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// SanitizeToken converts a string to a lowercase filesystem-safe token.
// Letters are lowercased, digits and hyphens/underscores are kept, everything
// else becomes an underscore. Returns "unknown" for empty input.
func SanitizeToken(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), "_-")
	if out == "" {
		return "unknown"
	}
	return out
}

// ExportFileName returns the default CSV name for an artist. The display name
// wins when present with whitespace collapsed to underscores; otherwise the
// artist id is used.
func ExportFileName(artistName, artistID string) string {
	part := strings.TrimSpace(artistName)
	if part != "" {
		part = whitespaceRun.ReplaceAllString(part, "_")
		part = strings.NewReplacer("/", "-", "\\", "-", ":", "-", "*", "-", "?", "", "\"", "", "<", "", ">", "", "|", "").Replace(part)
	} else {
		part = SanitizeToken(artistID)
		if part == "unknown" {
			part = "unknown_artist"
		}
	}
	return part + "_production_credits.csv"
}
