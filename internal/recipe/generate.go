package recipe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/nadmax/planwise/internal/ai"
	"github.com/nadmax/planwise/internal/metrics"
)

var ErrNoIngredients = errors.New("please add at least one ingredient")

// Generator asks the model for a recipe and extracts it from the reply.
type Generator struct {
	completer ai.Completer
	logger    *zap.Logger
}

func NewGenerator(c ai.Completer, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Generator{completer: c, logger: logger}
}

func (g *Generator) Generate(ctx context.Context, ingredients []string) (*Recipe, error) {
	cleaned := make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		if ing = strings.TrimSpace(ing); ing != "" {
			cleaned = append(cleaned, ing)
		}
	}
	if len(cleaned) == 0 {
		return nil, ErrNoIngredients
	}

	text, err := g.completer.Complete(ctx, ai.RecipePrompt(cleaned))
	if err != nil {
		return nil, fmt.Errorf("failed to generate recipe: %w", err)
	}

	r := Extract(text)
	metrics.RecordRecipeExtracted(r.Degraded())
	g.logger.Info("recipe generated",
		zap.String("recipe_id", r.ID),
		zap.String("title", r.Title),
		zap.Int("ingredients", len(r.Ingredients)),
		zap.Int("instructions", len(r.Instructions)),
	)

	return r, nil
}
