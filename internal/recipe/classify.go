package recipe

import (
	"regexp"
	"strings"
)

type LineKind int

const (
	Plain LineKind = iota
	Title
	SectionHeader
	ListItem
)

type Section string

const (
	SectionNone         Section = ""
	SectionIngredients  Section = "ingredients"
	SectionInstructions Section = "instructions"
	SectionTime         Section = "time"
	SectionDifficulty   Section = "difficulty"
)

// Line is one classified line of model output. Payload has markers stripped.
type Line struct {
	Kind    LineKind
	Section Section
	// Numbered is set for list items that carried a "1." style prefix.
	Numbered bool
	Payload  string
}

var sectionMarkers = []struct {
	marker  string
	section Section
}{
	{"**ingredients:**", SectionIngredients},
	{"**instructions:**", SectionInstructions},
	{"**total cooking time:**", SectionTime},
	{"**difficulty level:**", SectionDifficulty},
}

var (
	bulletPrefix   = regexp.MustCompile(`^[*\-]\s*`)
	numberedPrefix = regexp.MustCompile(`^\d+\.\s*`)
)

// Classify tags a single line. Rules are tried in order and the first match wins.
func Classify(raw string, titleSet bool) Line {
	line := strings.TrimSpace(raw)

	if !titleSet && strings.HasSuffix(line, ";") {
		return Line{Kind: Title, Payload: strings.TrimSpace(strings.TrimSuffix(line, ";"))}
	}

	lower := strings.ToLower(line)
	for _, m := range sectionMarkers {
		if strings.Contains(lower, m.marker) {
			return Line{Kind: SectionHeader, Section: m.section, Payload: line}
		}
	}

	if (strings.HasPrefix(line, "*") || strings.HasPrefix(line, "-")) && !strings.HasPrefix(line, "**") {
		return Line{Kind: ListItem, Payload: strings.TrimSpace(bulletPrefix.ReplaceAllString(line, ""))}
	}

	if numberedPrefix.MatchString(line) {
		return Line{Kind: ListItem, Numbered: true, Payload: strings.TrimSpace(numberedPrefix.ReplaceAllString(line, ""))}
	}

	return Line{Kind: Plain, Payload: line}
}
