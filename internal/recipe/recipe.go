// Package recipe turns free-form model output into validated Recipe records.
//
// The extractor is total: malformed or empty text still yields a fully
// populated Recipe, with placeholders standing in for anything that could
// not be recovered.
package recipe

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

const (
	DefaultTitle       = "Generated Recipe"
	DefaultIngredient  = "Ingredients will be listed here"
	DefaultInstruction = "Instructions will be listed here"
	DefaultCookingTime = "30"
)

type Recipe struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Ingredients  []string   `json:"ingredients"`
	Instructions []string   `json:"instructions"`
	CookingTime  string     `json:"cookingTime"`
	Difficulty   Difficulty `json:"difficulty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

func newRecipe() *Recipe {
	return &Recipe{
		ID:         uuid.New().String(),
		Difficulty: Medium,
		CreatedAt:  time.Now().UTC(),
	}
}

// Degraded reports whether any field had to fall back to a placeholder.
func (r *Recipe) Degraded() bool {
	return r.Title == DefaultTitle ||
		(len(r.Ingredients) == 1 && r.Ingredients[0] == DefaultIngredient) ||
		(len(r.Instructions) == 1 && r.Instructions[0] == DefaultInstruction)
}

func (r *Recipe) ToJSON() (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

func FromJSON(data string) (*Recipe, error) {
	var r Recipe
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		return nil, err
	}

	return &r, nil
}
