package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/nadmax/planwise/internal/queue"
	"github.com/nadmax/planwise/internal/recipe"
)

type RecipeGetter interface {
	GetRecipe(ctx context.Context, id string) (*recipe.Recipe, error)
}

// ShareRecipeHandler mails a stored recipe in its text layout.
func ShareRecipeHandler(recipes RecipeGetter, mailer Mailer) func(context.Context, *queue.Job) error {
	return func(ctx context.Context, job *queue.Job) error {
		to, ok := job.StringPayload("to")
		if !ok {
			return errors.New("missing 'to' field")
		}

		recipeID, ok := job.StringPayload("recipe_id")
		if !ok {
			return errors.New("missing 'recipe_id' field")
		}

		r, err := recipes.GetRecipe(ctx, recipeID)
		if err != nil {
			return fmt.Errorf("failed to load recipe: %w", err)
		}

		return mailer.Send(ctx, to, "Recipe: "+r.Title, recipe.Render(r))
	}
}
