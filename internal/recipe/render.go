package recipe

import (
	"fmt"
	"strings"
)

// Render writes a recipe back into the text layout Extract understands.
func Render(r *Recipe) string {
	var b strings.Builder

	b.WriteString(r.Title)
	b.WriteString(";\n\n**Ingredients:**\n")
	for _, ing := range r.Ingredients {
		fmt.Fprintf(&b, "* %s\n", ing)
	}

	b.WriteString("\n**Instructions:**\n")
	for i, step := range r.Instructions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}

	fmt.Fprintf(&b, "\n**Total Cooking Time:**\n%s minutes\n", r.CookingTime)
	fmt.Fprintf(&b, "\n**Difficulty Level:**\n%s\n", capitalize(string(r.Difficulty)))

	return b.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	return strings.ToUpper(s[:1]) + s[1:]
}
