// Package catalog serves the product list, category filtering and search.
package catalog

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/fjod/storefront/internal/domain"
)

var ErrProductNotFound = errors.New("product not found")

type Provider interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	// ListByCategory returns every product for domain.CategoryAll.
	ListByCategory(ctx context.Context, category string) ([]domain.Product, error)
	// Search matches query case-insensitively against name, description and
	// category. A blank query matches everything.
	Search(ctx context.Context, query string) ([]domain.Product, error)
}

var categories = []domain.Category{
	{ID: domain.CategoryAll, Name: "All Products"},
	{ID: "electronics", Name: "Electronics"},
	{ID: "clothing", Name: "Clothing"},
	{ID: "home", Name: "Home & Kitchen"},
	{ID: "beauty", Name: "Beauty & Personal Care"},
	{ID: "books", Name: "Books"},
}

func Categories() []domain.Category {
	out := make([]domain.Category, len(categories))
	copy(out, categories)
	return out
}

func matches(p domain.Product, query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(p.Name), q) ||
		strings.Contains(strings.ToLower(p.Description), q) ||
		strings.Contains(strings.ToLower(p.Category), q)
}

// sortByID orders products the way the catalog lists them: numeric ids
// numerically, anything else lexically after them.
func sortByID(products []domain.Product) {
	sort.SliceStable(products, func(i, j int) bool {
		a, errA := strconv.Atoi(products[i].ID)
		b, errB := strconv.Atoi(products[j].ID)
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		default:
			return products[i].ID < products[j].ID
		}
	})
}
