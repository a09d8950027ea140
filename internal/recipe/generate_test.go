package recipe

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadmax/planwise/internal/ai"
)

func TestGenerate(t *testing.T) {
	var prompt string
	g := NewGenerator(ai.CompleterFunc(func(_ context.Context, in string) (string, error) {
		prompt = in
		return stirFry, nil
	}), nil)

	r, err := g.Generate(context.Background(), []string{" tofu ", "", "soy sauce"})

	require.NoError(t, err)
	assert.Contains(t, prompt, "tofu, soy sauce")
	assert.Equal(t, "Spicy Tofu Stir-fry", r.Title)
	assert.Equal(t, Easy, r.Difficulty)
}

func TestGenerate_NoIngredients(t *testing.T) {
	g := NewGenerator(ai.CompleterFunc(func(context.Context, string) (string, error) {
		t.Fatal("completer must not be called")
		return "", nil
	}), nil)

	_, err := g.Generate(context.Background(), []string{"  ", ""})

	assert.ErrorIs(t, err, ErrNoIngredients)
}

func TestGenerate_TransportError(t *testing.T) {
	cause := errors.New("503 Service Unavailable")
	g := NewGenerator(ai.CompleterFunc(func(context.Context, string) (string, error) {
		return "", cause
	}), nil)

	_, err := g.Generate(context.Background(), []string{"eggs"})

	assert.ErrorIs(t, err, cause)
}

func TestGenerate_GarbageStillYieldsRecipe(t *testing.T) {
	g := NewGenerator(ai.CompleterFunc(func(context.Context, string) (string, error) {
		return "Sorry, I can only talk about travel.", nil
	}), nil)

	r, err := g.Generate(context.Background(), []string{"eggs"})

	require.NoError(t, err)
	assert.Equal(t, "Sorry, I can only talk about travel.", r.Title)
	assert.Equal(t, []string{DefaultIngredient}, r.Ingredients)
	assert.True(t, r.Degraded())
}
