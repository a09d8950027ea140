package recipe

import (
	"regexp"
	"strings"
)

var digitRun = regexp.MustCompile(`\d+`)

// leakedHeaders are words that only show up in list entries when a section
// header slipped through as content.
var leakedHeaders = []string{"ingredients", "instructions"}

// Extract builds a Recipe from model output. It never fails.
func Extract(text string) *Recipe {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, strings.TrimSpace(l))
		}
	}

	r := newRecipe()
	section := SectionNone

	for _, raw := range lines {
		line := Classify(raw, r.Title != "")

		switch line.Kind {
		case Title:
			r.Title = line.Payload
			continue
		case SectionHeader:
			section = line.Section
			continue
		}

		switch section {
		case SectionIngredients:
			if line.Kind == ListItem && !line.Numbered && line.Payload != "" {
				r.Ingredients = append(r.Ingredients, line.Payload)
			}
		case SectionInstructions:
			if line.Kind == ListItem && line.Numbered && line.Payload != "" {
				r.Instructions = append(r.Instructions, line.Payload)
			}
		case SectionTime:
			if m := digitRun.FindString(raw); m != "" {
				r.CookingTime = m
			}
		case SectionDifficulty:
			if d, ok := matchDifficulty(raw); ok {
				r.Difficulty = d
			}
		}
	}

	if r.Title == "" && len(lines) > 0 {
		r.Title = strings.TrimSpace(strings.TrimSuffix(lines[0], ";"))
	}

	sanitize(r)

	return r
}

func matchDifficulty(line string) (Difficulty, bool) {
	lower := strings.ToLower(line)
	for _, d := range []Difficulty{Easy, Hard, Medium} {
		if strings.Contains(lower, string(d)) {
			return d, true
		}
	}

	return "", false
}

func sanitize(r *Recipe) {
	r.Ingredients = dropLeaked(r.Ingredients)
	r.Instructions = dropLeaked(r.Instructions)

	if len(r.Ingredients) == 0 {
		r.Ingredients = []string{DefaultIngredient}
	}
	if len(r.Instructions) == 0 {
		r.Instructions = []string{DefaultInstruction}
	}
	if r.CookingTime == "" {
		r.CookingTime = DefaultCookingTime
	}
	if r.Title == "" {
		r.Title = DefaultTitle
	}
}

func dropLeaked(entries []string) []string {
	kept := entries[:0]
	for _, e := range entries {
		if strings.TrimSpace(e) == "" || containsLeakedHeader(e) {
			continue
		}
		kept = append(kept, e)
	}

	return kept
}

func containsLeakedHeader(entry string) bool {
	lower := strings.ToLower(entry)
	for _, h := range leakedHeaders {
		if strings.Contains(lower, h) {
			return true
		}
	}

	return false
}
