package credits

import (
	"regexp"
	"strings"
)

var (
	bracketed     = regexp.MustCompile(`\[.*?\]`)
	parenthetical = regexp.MustCompile(`\(.*?\)`)
	punctuation   = regexp.MustCompile(`[^\w\s-]`)
	whitespace    = regexp.MustCompile(`\s+`)
)

type abbreviation struct {
	short string
	full  string
	re    *regexp.Regexp
}

// abbreviations are expanded one after another, so an earlier expansion can
// feed a later pattern.
var abbreviations = buildAbbreviations([][2]string{
	{"prod", "producer"}, {"exec prod", "executive producer"}, {"co-prod", "co-producer"},
	{"add'l prod", "additional producer"}, {"assoc prod", "associate producer"},
	{"exec. prod", "executive producer"}, {"co prod", "co-producer"},

	{"eng", "engineer"}, {"rec eng", "recording engineer"}, {"mix eng", "mixing engineer"},
	{"mast eng", "mastering engineer"}, {"asst eng", "assistant engineer"}, {"add'l eng", "additional engineer"},
	{"recording eng", "recording engineer"}, {"audio eng", "audio engineer"}, {"sound eng", "sound engineer"},

	{"voc", "vocals"}, {"lead voc", "lead vocals"}, {"bg voc", "backing vocals"},
	{"bgv", "backing vocals"}, {"harmony voc", "harmony vocals"},
	{"gtr", "guitar"}, {"elec gtr", "electric guitar"}, {"ac gtr", "acoustic guitar"},
	{"bass gtr", "bass guitar"}, {"keys", "keyboards"}, {"kbd", "keyboards"},
	{"synt", "synthesizer"}, {"synth", "synthesizer"}, {"perc", "percussion"}, {"drm", "drums"}, {"dr", "drums"},

	{"feat", "featuring"}, {"ft", "featuring"}, {"w/", "with"}, {"perf", "performer"},
	{"guest", "guest artist"}, {"lead perf", "lead performer"}, {"sp guest", "special guest"},

	{"cond", "conductor"}, {"orch", "orchestrator"},
	{"str", "strings"}, {"ens", "ensemble"}, {"dir", "director"},
	{"mus dir", "musical director"}, {"conc", "concertmaster"},

	{"arr", "arranger"}, {"str arr", "string arranger"}, {"horn arr", "horn arranger"},
	{"voc arr", "vocal arranger"},

	{"prog", "programmer"}, {"program", "programmer"}, {"seq", "sequencer"}, {"samp", "sampler"},
	{"drum prog", "drum programming"}, {"beat prog", "beat programmer"},

	{"asst", "assistant"}, {"tech", "technical"}, {"op", "operator"},
	{"tape op", "tape operator"}, {"pt op", "pro tools operator"},

	{"elec", "electric"}, {"ac", "acoustic"}, {"bs", "bass"}, {"gt", "guitar"}, {"gtrs", "guitars"},
	{"pno", "piano"}, {"org", "organ"}, {"harp", "harp"}, {"vln", "violin"},
	{"vla", "viola"}, {"vc", "cello"}, {"cb", "contrabass"}, {"fl", "flute"},
	{"ob", "oboe"}, {"cl", "clarinet"}, {"sax", "saxophone"}, {"tpt", "trumpet"},
	{"tbn", "trombone"}, {"hn", "horn"}, {"tba", "tuba"},

	{"comp", "composer"}, {"lyr", "lyricist"}, {"rmx", "remix"}, {"mix", "mixed"}, {"mstr", "mastered"},
})

func buildAbbreviations(pairs [][2]string) []abbreviation {
	out := make([]abbreviation, 0, len(pairs))
	for _, pair := range pairs {
		out = append(out, abbreviation{
			short: pair[0],
			full:  strings.ToLower(pair[1]),
			re:    regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(pair[0]) + `\b`),
		})
	}
	return out
}

// Normalize prepares raw role text for classification and lookup.
func Normalize(role string) string {
	cleaned := strings.ToLower(role)
	cleaned = bracketed.ReplaceAllString(cleaned, "")
	cleaned = parenthetical.ReplaceAllString(cleaned, "")
	cleaned = punctuation.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(whitespace.ReplaceAllString(cleaned, " "))
	for _, abbr := range abbreviations {
		cleaned = abbr.re.ReplaceAllLiteralString(cleaned, abbr.full)
	}
	return cleaned
}
