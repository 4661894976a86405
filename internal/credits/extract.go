package credits

import (
	"regexp"
	"slices"
	"strings"

	"prodscan/internal/discogs"
)

var roleSeparators = regexp.MustCompile(`[,;&]+`)

// Roles maps categories to their distinct display roles, kept sorted.
type Roles map[Category][]string

// Add records role under category. Duplicates are ignored.
func (r Roles) Add(category Category, role string) {
	existing := r[category]
	i, found := slices.BinarySearch(existing, role)
	if found {
		return
	}
	r[category] = slices.Insert(existing, i, role)
}

// Merge unions other into r.
func (r Roles) Merge(other Roles) {
	for category, roles := range other {
		for _, role := range roles {
			r.Add(category, role)
		}
	}
}

// Empty reports whether no category holds a role.
func (r Roles) Empty() bool {
	for _, roles := range r {
		if len(roles) > 0 {
			return false
		}
	}
	return true
}

// Summary joins the summary terms of every populated category in priority
// order, or returns "N/A" when nothing was found.
func (r Roles) Summary() string {
	terms := make([]string, 0, len(r))
	for _, info := range categoryTable {
		if len(r[info.Key]) > 0 {
			terms = append(terms, info.SummaryTerm)
		}
	}
	if len(terms) == 0 {
		return "N/A"
	}
	return strings.Join(terms, ", ")
}

// NameVariants derives the strings used to recognize the target artist in
// credit names: the lowercased name, the name as given, and the lowercased
// name without a leading "the ".
func NameVariants(artistName string) []string {
	if artistName == "" {
		return nil
	}
	lower := strings.ToLower(artistName)
	variants := []string{lower}
	if artistName != lower {
		variants = append(variants, artistName)
	}
	if rest, ok := strings.CutPrefix(lower, "the "); ok && rest != "" {
		variants = append(variants, rest)
	}
	return variants
}

// MatchesArtist reports whether a credit name contains any variant,
// case-insensitively.
func MatchesArtist(name string, variants []string) bool {
	candidate := strings.ToLower(strings.TrimSpace(name))
	if candidate == "" {
		return false
	}
	for _, variant := range variants {
		if variant == "" {
			continue
		}
		if strings.Contains(candidate, strings.ToLower(variant)) {
			return true
		}
	}
	return false
}

// Extract collects the categorized roles credited to the target artist on
// release, across both its credits and extraartists lists.
func Extract(release *discogs.Release, variants []string) Roles {
	roles := Roles{}
	if release == nil {
		return roles
	}
	for _, credit := range release.AllCredits() {
		if !MatchesArtist(credit.Name, variants) {
			continue
		}
		for _, text := range credit.Role {
			for _, fragment := range roleSeparators.Split(text, -1) {
				fragment = strings.TrimSpace(fragment)
				category := Classify(fragment)
				if category == None {
					continue
				}
				roles.Add(category, Standardize(fragment, category))
			}
		}
	}
	return roles
}

// HasTargetCredits reports whether release credits the target artist with
// at least one classified role.
func HasTargetCredits(release *discogs.Release, variants []string) bool {
	return !Extract(release, variants).Empty()
}
