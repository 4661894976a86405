package credits

import (
	"cmp"
	"slices"
	"strings"

	"prodscan/internal/textutil"
)

var canonicalRoles = map[string]string{
	"producer":            "Producer",
	"executive producer":  "Executive Producer",
	"co producer":         "Co-Producer",
	"associate producer":  "Associate Producer",
	"additional producer": "Additional Producer",
	"vocal producer":      "Vocal Producer",
	"music producer":      "Music Producer",
	"beat producer":       "Beat Producer",

	"engineer":            "Engineer",
	"recording engineer":  "Recording Engineer",
	"audio engineer":      "Audio Engineer",
	"sound engineer":      "Sound Engineer",
	"tracking engineer":   "Tracking Engineer",
	"assistant engineer":  "Assistant Engineer",
	"co engineer":         "Co-Engineer",
	"additional engineer": "Additional Engineer",

	"mixed":          "Mixed By",
	"mixing":         "Mixed By",
	"mixer":          "Mixed By",
	"co mixed":       "Co-Mixed",
	"assistant mix":  "Assistant Mix",
	"additional mix": "Additional Mix",

	"mastered":     "Mastered By",
	"mastering":    "Mastered By",
	"remastered":   "Remastered By",
	"pre mastered": "Pre-Mastered",
	"co mastered":  "Co-Mastered",

	"vocals":            "Vocals",
	"lead vocals":       "Lead Vocals",
	"backing vocals":    "Backing Vocals",
	"harmony vocals":    "Harmony Vocals",
	"additional vocals": "Additional Vocals",
	"guest vocals":      "Guest Vocals",
	"featuring":         "Featuring",

	"performer":           "Performer",
	"featured artist":     "Featured Artist",
	"guest artist":        "Guest Artist",
	"special guest":       "Special Guest",
	"appears courtesy of": "Appears Courtesy Of",

	"arranger":        "Arranger",
	"string arranger": "String Arranger",
	"horn arranger":   "Horn Arranger",
	"vocal arranger":  "Vocal Arranger",
	"orchestrator":    "Orchestrator",

	"programmer":              "Programmer",
	"beat programmer":         "Beat Programmer",
	"drum programming":        "Drum Programming",
	"synthesizer programming": "Synthesizer Programming",

	"conductor":        "Conductor",
	"musical director": "Musical Director",
	"concertmaster":    "Concertmaster",
	"orchestra":        "Orchestra",
	"ensemble":         "Ensemble",

	"writer":     "Writer",
	"composer":   "Composer",
	"lyricist":   "Lyricist",
	"songwriter": "Songwriter",

	"recorded":  "Recorded By",
	"recording": "Recorded By",
	"tracked":   "Tracked By",
	"tracking":  "Tracked By",
}

// standardRolesByLength holds each category's standard roles, longest first,
// so "Additional Producer" wins over "Producer".
var standardRolesByLength = func() map[Category][]string {
	out := make(map[Category][]string, len(categoryTable))
	for _, info := range categoryTable {
		roles := slices.Clone(info.StandardRoles)
		slices.SortStableFunc(roles, func(a, b string) int {
			return cmp.Compare(len(b), len(a))
		})
		out[info.Key] = roles
	}
	return out
}()

// Standardize renders a single role fragment for display within category.
func Standardize(role string, category Category) string {
	normalized := Normalize(role)
	if canonical, ok := canonicalRoles[normalized]; ok {
		return canonical
	}
	for _, standard := range standardRolesByLength[category] {
		if strings.Contains(normalized, strings.ToLower(standard)) {
			return standard
		}
	}
	return textutil.TitleCase(strings.TrimSpace(role))
}
