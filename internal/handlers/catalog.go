package handlers

import (
	"errors"
	"net/http"

	applog "larder/internal/log"
	"larder/internal/store"
)

// ShowRecipe returns a recipe with its usages and current costs.
func ShowRecipe(w http.ResponseWriter, r *http.Request) {
	if catalog == nil {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}
	id := r.PathValue("id")
	recipe, err := catalog.Recipe(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "recipe not found")
			return
		}
		applog.Error(r.Context(), "failed to load recipe", "id", id, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load recipe")
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

// ShowProduct returns a product with its items, packaging and total cost.
func ShowProduct(w http.ResponseWriter, r *http.Request) {
	if catalog == nil {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}
	id := r.PathValue("id")
	product, err := catalog.Product(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "product not found")
			return
		}
		applog.Error(r.Context(), "failed to load product", "id", id, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load product")
		return
	}
	writeJSON(w, http.StatusOK, product)
}
