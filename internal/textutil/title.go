package textutil

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var disambiguationSuffix = regexp.MustCompile(`\(\d+\)$`)

// TitleCase capitalizes the first letter of each word and lowercases the rest.
func TitleCase(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	return cases.Title(language.Und).String(value)
}

// StripDisambiguation removes the numeric suffix Discogs appends to artist
// names that collide, e.g. "John Smith (2)" becomes "John Smith".
func StripDisambiguation(name string) string {
	return strings.TrimSpace(disambiguationSuffix.ReplaceAllString(strings.TrimSpace(name), ""))
}
