package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/fjod/storefront/internal/catalog"
	"github.com/fjod/storefront/internal/domain"
	"github.com/go-chi/chi/v5"
)

type CatalogHandler struct {
	catalog catalog.Provider
	timeout time.Duration
}

func NewCatalogHandler(provider catalog.Provider, timeout time.Duration) *CatalogHandler {
	return &CatalogHandler{
		catalog: provider,
		timeout: timeout,
	}
}

type ProductsResponse struct {
	Products []domain.Product `json:"products"`
	Count    int              `json:"count"`
}

func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"categories": catalog.Categories(),
	})
}

// ListProducts handles GET /api/v1/products?category=&q=. The search query
// and the category filter combine.
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	category := strings.TrimSpace(r.URL.Query().Get("category"))
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	var (
		products []domain.Product
		err      error
	)
	if query != "" {
		products, err = h.catalog.Search(ctx, query)
		if err == nil && category != "" && category != domain.CategoryAll {
			products = inCategory(products, category)
		}
	} else {
		products, err = h.catalog.ListByCategory(ctx, category)
	}
	if err != nil {
		respondErr(w, r, err)
		return
	}
	if products == nil {
		products = []domain.Product{}
	}

	respondJSON(w, http.StatusOK, ProductsResponse{
		Products: products,
		Count:    len(products),
	})
}

func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	product, err := h.catalog.GetProduct(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func inCategory(products []domain.Product, category string) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}
