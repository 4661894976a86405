package catalog

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// SortColumn names a sortable field.
type SortColumn string

const (
	SortArtist  SortColumn = "artist"
	SortTitle   SortColumn = "title"
	SortLabel   SortColumn = "label"
	SortYear    SortColumn = "year"
	SortCredits SortColumn = "credits"
)

// SortColumns lists the accepted sort columns.
func SortColumns() []SortColumn {
	return []SortColumn{SortArtist, SortTitle, SortLabel, SortYear, SortCredits}
}

// ParseSortColumn validates a column name.
func ParseSortColumn(value string) (SortColumn, error) {
	column := SortColumn(strings.ToLower(strings.TrimSpace(value)))
	if slices.Contains(SortColumns(), column) {
		return column, nil
	}
	return "", fmt.Errorf("unknown sort column %q", value)
}

// Sort returns a sorted copy of items. Text columns compare
// case-insensitively; years compare numerically and items without a numeric
// year always come last. Ties keep their collection order.
func Sort(items []Item, column SortColumn, descending bool) []Item {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b Item) int {
		if column == SortYear {
			ay, aok := numericYear(a.Year)
			by, bok := numericYear(b.Year)
			switch {
			case !aok && !bok:
				return 0
			case !aok:
				return 1
			case !bok:
				return -1
			}
			return direction(cmp.Compare(ay, by), descending)
		}
		return direction(cmp.Compare(sortText(a, column), sortText(b, column)), descending)
	})
	return out
}

func direction(result int, descending bool) int {
	if descending {
		return -result
	}
	return result
}

func numericYear(value string) (int, bool) {
	year, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || year <= 0 {
		return 0, false
	}
	return year, true
}

func sortText(it Item, column SortColumn) string {
	var value string
	switch column {
	case SortArtist:
		value = it.Artist
	case SortTitle:
		value = it.Title
	case SortLabel:
		value = it.Label
	case SortCredits:
		value = it.Credits
	}
	return strings.ToLower(value)
}
