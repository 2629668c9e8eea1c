package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/example/ksd-storefront/internal/catalog"
)

// ListCategories returns every category with its products
func (h *Handlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.catalog.Categories())
}

// GetCategory returns a single category by key
func (h *Handlers) GetCategory(w http.ResponseWriter, r *http.Request) {
	cat, err := h.catalog.Category(chi.URLParam(r, "category"))
	if err != nil {
		respondJSONError(w, "Category not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, cat)
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.Product(chi.URLParam(r, "category"), chi.URLParam(r, "slug"))
	switch {
	case errors.Is(err, catalog.ErrCategoryNotFound):
		respondJSONError(w, "Category not found", http.StatusNotFound)
		return
	case err != nil:
		respondJSONError(w, "Product not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, p)
}
