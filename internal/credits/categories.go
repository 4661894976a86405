package credits

import (
	"regexp"
	"slices"
)

// Category is one of the fixed credit categories.
type Category string

// Credit categories. None is returned for input that carries no role text.
const (
	None        Category = ""
	Production  Category = "production"
	Engineering Category = "engineering"
	Mixing      Category = "mixing"
	Mastering   Category = "mastering"
	Vocals      Category = "vocals"
	Instruments Category = "instruments"
	Performance Category = "performance"
	Orchestral  Category = "orchestral"
	Arrangement Category = "arrangement"
	Programming Category = "programming"
	Technical   Category = "technical"
	Remix       Category = "remix"
	Songwriting Category = "songwriting"
	Other       Category = "other"
)

// CategoryInfo is the static description of a category.
type CategoryInfo struct {
	Key           Category
	Display       string
	Priority      int
	SummaryTerm   string
	StandardRoles []string

	patterns []*regexp.Regexp
}

// Matches reports whether normalized role text hits any of the category's
// patterns. Other matches everything.
func (c CategoryInfo) Matches(normalized string) bool {
	if c.Key == Other {
		return normalized != ""
	}
	for _, re := range c.patterns {
		if re.MatchString(normalized) {
			return true
		}
	}
	return false
}

// Classification tries categories in this order. Specific vocabulary comes
// first so "remix" is not swallowed by "mix" and "concertmaster" not by
// "master".
var precedence = []Category{
	Remix,
	Songwriting,
	Orchestral,
	Arrangement,
	Mastering,
	Mixing,
	Production,
	Engineering,
	Programming,
	Technical,
	Performance,
	Vocals,
	Instruments,
	Other,
}

var categoryTable = []CategoryInfo{
	newCategory(Production, "Production", 1, "Produced",
		[]string{"Producer", "Executive Producer", "Co-Producer", "Associate Producer", "Additional Producer", "Vocal Producer", "Music Producer", "Beat Producer", "Track Producer"},
		`produc`, `exec.*prod`, `co.*prod`, `assoc.*prod`, `additional.*prod`, `vocal.*prod`, `music.*prod`,
		`beat.*prod`, `track.*prod`, `executive.*prod`),
	newCategory(Engineering, "Engineering", 2, "Engineered",
		[]string{"Engineer", "Recording Engineer", "Audio Engineer", "Sound Engineer", "Assistant Engineer", "Additional Engineer", "Co-Engineer", "Vocal Engineer", "Tracking Engineer", "Overdub Engineer", "Live Engineer"},
		`engineer`, `record`, `track`, `audio.*eng`, `sound.*eng`, `assist.*eng`, `additional.*eng`,
		`co.*eng`, `vocal.*eng`, `overdup.*eng`, `live.*eng`, `studio.*eng`, `recording.*eng`,
		`tracking.*eng`, `eng.*by`),
	newCategory(Mixing, "Mixing", 3, "Mixed",
		[]string{"Mixed", "Co-Mixed", "Assistant Mix", "Additional Mix", "Vocal Mix"},
		`mix`, `co.*mix`, `assist.*mix`, `additional.*mix`, `vocal.*mix`, `final.*mix`, `stereo.*mix`,
		`mixer`, `mixed.*by`, `mix.*by`),
	newCategory(Mastering, "Mastering", 4, "Mastered",
		[]string{"Mastered", "Remastered", "Pre-Mastered", "Co-Mastered", "Assistant Mastering", "Additional Mastering"},
		`master`, `remaster`, `pre.*master`, `co.*master`, `assist.*master`, `additional.*master`,
		`final.*master`, `mastered.*by`, `master.*by`, `remastered.*by`),
	newCategory(Vocals, "Vocals", 5, "Vocals",
		[]string{"Vocals", "Lead Vocals", "Backing Vocals", "Harmony Vocals", "Singer", "Voice"},
		`vocal`, `sing`, `voice`, `lead.*voc`, `backing.*voc`, `harmony`, `choir`, `chorus`, `featuring`,
		`guest.*voc`, `additional.*voc`),
	newCategory(Instruments, "Instruments", 6, "Instruments",
		[]string{"Guitar", "Electric Guitar", "Acoustic Guitar", "Bass", "Bass Guitar", "Electric Bass", "Drums", "Percussion", "Piano", "Keyboards", "Synthesizer"},
		`guitar`, `bass`, `drum`, `piano`, `keyboard`, `synth`, `percussion`, `electric.*guitar`,
		`acoustic.*guitar`, `lead.*guitar`, `rhythm.*guitar`, `bass.*guitar`, `electric.*bass`,
		`upright.*bass`, `double.*bass`, `drum.*kit`, `hand.*percussion`, `violin`, `viola`, `cello`,
		`contrabass`, `flute`, `oboe`, `clarinet`, `saxophone`, `trumpet`, `trombone`, `french.*horn`,
		`tuba`, `harp`, `organ`, `rhodes`, `hammond`, `wurltizer`, `moog`, `arp`, `pad`, `lead`,
		`string.*section`, `horn.*section`, `backing.*track`),
	newCategory(Performance, "Performance", 7, "Performed",
		[]string{"Performer", "Featured Artist", "Guest Vocalist", "Lead Performer", "Solo", "Soloist", "Featuring", "With", "Appears Courtesy Of"},
		`perform`, `featured`, `guest`, `appears`, `with`, `courtesy.*of`, `special.*guest`,
		`ladditional.*perform`, `live.*perform`, `studio.*perform`, `solo`, `soloist`),
	newCategory(Orchestral, "Orchestral", 8, "Orchestral Work",
		[]string{"Conductor", "Musical Director", "Concertmaster", "Orchestrator", "String Leader", "Section Leader", "Principal", "Orchestra", "Ensemble", "Choir", "Chorus"},
		`conductor`, `musical.*director`, `concertmaster`, `orchestra`, `ensemble`, `choir`, `chorus`,
		`string.*leader`, `section.*leader`, `principal`, `first.*chair`, `symphony`, `philharmonic`,
		`chamber`, `quartet`, `quintet`, `octet`),
	newCategory(Arrangement, "Arrangement", 9, "Arranged",
		[]string{"Arranger", "String Arranger", "Horn Arranger", "Vocal Arranger", "Orchestrator", "Adapted By", "Additional Arrangement"},
		`arrang`, `string.*arr`, `horn.*arr`, `vocal.*arr`, `orchestrat`, `adapted.*by`,
		`additional.*arrang`, `reach.*arrang`, `musical.*arrang`),
	newCategory(Programming, "Programming", 10, "Programmed",
		[]string{"Programmer", "Beat Programmer", "Drum Programming", "Synthesizer Programming", "Sequencer", "Sampler", "Electronic Beats", "Programming By"},
		`program`, `beat.*prog`, `drum.*prog`, `synth.*prog`, `sequenc`, `sampl`, `electronic.*beat`,
		`prog.*by`, `loop`, `computer.*program`, `midi.*program`, `midi`),
	newCategory(Technical, "Technical", 11, "Technical Support",
		[]string{"Assistant", "Tape Operator", "Digital Editing", "Pro Tools Operator", "Technical Assistant", "Setup", "Maintenance", "Equipment"},
		`assistant`, `tape.*operator`, `digital.*edit`, `pro.*tools.*op`, `technical.*assist`, `setup`,
		`maintenance`, `equipment`, `tech.*support`, `studio.*tech`, `assist.*eng`),
	newCategory(Remix, "Remix", 12, "Remixed",
		[]string{"Remix", "Additional Production Remix"},
		`remix`, `re.*mix`, `mix.*edit`, `additional.*prod.*remix`, `version`, `edit`, `revision`),
	newCategory(Songwriting, "Songwriting", 13, "Written",
		[]string{"Writer", "Composer", "Lyricist", "Music By", "Words By"},
		`writer`, `compos`, `lyric`, `music.*by`, `words.*by`, `song.*writ`, `co.*writ`, `additional.*writ`,
		`author`, `created.*by`, `original.*by`),
	newCategory(Other, "Additional Credits", 99, "Other Credits", nil),
}

var categoryIndex = func() map[Category]int {
	index := make(map[Category]int, len(categoryTable))
	for i, info := range categoryTable {
		index[info.Key] = i
	}
	return index
}()

// Categories returns every category in priority order.
func Categories() []CategoryInfo {
	return slices.Clone(categoryTable)
}

// Precedence returns the order in which Classify tests categories.
func Precedence() []Category {
	return slices.Clone(precedence)
}

// Lookup returns the static description of c.
func Lookup(c Category) (CategoryInfo, bool) {
	i, ok := categoryIndex[c]
	if !ok {
		return CategoryInfo{}, false
	}
	return categoryTable[i], true
}

// ParseCategory maps a category key to its Category.
func ParseCategory(key string) (Category, bool) {
	c := Category(key)
	_, ok := categoryIndex[c]
	return c, ok
}

// Display returns the human label of c, or the raw key when unknown.
func (c Category) Display() string {
	if info, ok := Lookup(c); ok {
		return info.Display
	}
	return string(c)
}

func newCategory(key Category, display string, priority int, term string, roles []string, patterns ...string) CategoryInfo {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(`(?i)\b`+p))
	}
	return CategoryInfo{
		Key:           key,
		Display:       display,
		Priority:      priority,
		SummaryTerm:   term,
		StandardRoles: roles,
		patterns:      compiled,
	}
}
