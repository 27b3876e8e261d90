package segmentation

import "strings"

// instrumentInfo is one row of the deterministic section/transposition
// lookup table (§4.4 step 3).
type instrumentInfo struct {
	section       string
	transposition string
}

// lookupTable maps a normalized instrument key to its section and
// transposition. Keys are matched after NormalizeHeader has stripped part
// numbers and ordinal suffixes, so "flute 1" and "flute" both hit "flute".
var lookupTable = map[string]instrumentInfo{
	"piccolo":          {"Woodwinds", "C"},
	"flute":            {"Woodwinds", "C"},
	"oboe":             {"Woodwinds", "C"},
	"english horn":     {"Woodwinds", "F"},
	"bassoon":          {"Woodwinds", "C"},
	"contrabassoon":    {"Woodwinds", "C"},
	"clarinet":         {"Woodwinds", "Bb"},
	"bb clarinet":      {"Woodwinds", "Bb"},
	"eb clarinet":      {"Woodwinds", "Eb"},
	"bass clarinet":    {"Woodwinds", "Bb"},
	"alto saxophone":   {"Woodwinds", "Eb"},
	"alto sax":         {"Woodwinds", "Eb"},
	"tenor saxophone":  {"Woodwinds", "Bb"},
	"tenor sax":        {"Woodwinds", "Bb"},
	"baritone saxophone": {"Woodwinds", "Eb"},
	"bari sax":         {"Woodwinds", "Eb"},
	"soprano saxophone": {"Woodwinds", "Bb"},
	"french horn":      {"Brass", "F"},
	"horn":             {"Brass", "F"},
	"trumpet":          {"Brass", "Bb"},
	"bb trumpet":       {"Brass", "Bb"},
	"cornet":           {"Brass", "Bb"},
	"flugelhorn":       {"Brass", "Bb"},
	"trombone":         {"Brass", "C"},
	"bass trombone":    {"Brass", "C"},
	"euphonium":        {"Brass", "C"},
	"baritone":         {"Brass", "C"},
	"tuba":             {"Brass", "C"},
	"timpani":          {"Percussion", "C"},
	"percussion":       {"Percussion", "C"},
	"snare drum":       {"Percussion", "C"},
	"bass drum":        {"Percussion", "C"},
	"mallet percussion": {"Percussion", "C"},
	"xylophone":        {"Percussion", "C"},
	"glockenspiel":     {"Percussion", "C"},
	"marimba":          {"Percussion", "C"},
	"vibraphone":       {"Percussion", "C"},
	"violin":           {"Strings", "C"},
	"viola":            {"Strings", "C"},
	"cello":            {"Strings", "C"},
	"double bass":      {"Strings", "C"},
	"contrabass":       {"Strings", "C"},
	"harp":             {"Strings", "C"},
	"piano":            {"Keyboard", "C"},
	"celesta":          {"Keyboard", "C"},
	"organ":            {"Keyboard", "C"},
	"voice":            {"Voice", "C"},
	"soprano":          {"Voice", "C"},
	"alto":             {"Voice", "C"},
	"tenor":            {"Voice", "C"},
	"bass":             {"Voice", "C"},
	"conductor":        {"Score", "C"},
	"score":            {"Score", "C"},
	"full score":       {"Score", "C"},
}

// lookup resolves a normalized instrument key, falling back to an "Other"
// section with concert-pitch transposition for unrecognized headers so every
// segment still gets a non-empty section/transposition pair.
func lookup(normalizedKey string) (section, transposition string) {
	if info, ok := lookupTable[normalizedKey]; ok {
		return info.section, info.transposition
	}
	// Substring fallback: the longest contained key wins (ties broken
	// lexically) so the result does not depend on map iteration order.
	best := ""
	for key := range lookupTable {
		if strings.Contains(normalizedKey, key) && (len(key) > len(best) || (len(key) == len(best) && key < best)) {
			best = key
		}
	}
	if best != "" {
		info := lookupTable[best]
		return info.section, info.transposition
	}
	return "Other", "C"
}
