package api

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/nadmax/planwise/internal/httputil"
	"github.com/nadmax/planwise/internal/recipe"
	"github.com/nadmax/planwise/internal/worker/handlers"
)

type GenerateRecipeRequest struct {
	Ingredients []string `json:"ingredients"`
}

type ShareRequest struct {
	To string `json:"to"`
}

func (a *API) generateRecipe(w http.ResponseWriter, r *http.Request) {
	var req GenerateRecipeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	rec, err := a.recipes.Generate(r.Context(), req.Ingredients)
	if errors.Is(err, recipe.ErrNoIngredients) {
		httputil.WriteJSONError(w, "Please add at least one ingredient", http.StatusBadRequest)
		return
	}
	if err != nil {
		a.logger.Error("recipe generation failed", zap.Error(err))
		httputil.WriteJSONError(w, "Failed to generate recipe", http.StatusBadGateway)
		return
	}

	if err := a.store.SaveRecipe(r.Context(), rec); err != nil {
		a.writeStoreError(w, err, "")
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, rec)
}

func (a *API) listRecipes(w http.ResponseWriter, r *http.Request) {
	recipes, err := a.store.ListRecipes(r.Context())
	if err != nil {
		a.writeStoreError(w, err, "")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, recipes)
}

func (a *API) getRecipe(w http.ResponseWriter, r *http.Request) {
	rec, err := a.store.GetRecipe(r.Context(), r.PathValue("id"))
	if err != nil {
		a.writeStoreError(w, err, "Recipe not found")
		return
	}

	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(recipe.Render(rec)))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, rec)
}

func (a *API) deleteRecipe(w http.ResponseWriter, r *http.Request) {
	if err := a.store.DeleteRecipe(r.Context(), r.PathValue("id")); err != nil {
		a.writeStoreError(w, err, "Recipe not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (a *API) shareRecipe(w http.ResponseWriter, r *http.Request) {
	var req ShareRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !validAddress(req.To) {
		httputil.WriteJSONError(w, "A recipient address is required", http.StatusBadRequest)
		return
	}

	id := r.PathValue("id")
	if _, err := a.store.GetRecipe(r.Context(), id); err != nil {
		a.writeStoreError(w, err, "Recipe not found")
		return
	}

	a.enqueue(w, r, handlers.ShareRecipeJob, map[string]any{"to": req.To, "recipe_id": id})
}

func validAddress(to string) bool {
	at := strings.Index(to, "@")
	return at > 0 && at < len(to)-1 && !strings.ContainsAny(to, " \t\r\n")
}
