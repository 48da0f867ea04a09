package catalog

import (
	"context"
	"strings"

	"github.com/fjod/storefront/internal/domain"
)

// Memory is a read-only catalog held in process.
type Memory struct {
	products []domain.Product
}

func NewMemory(products []domain.Product) *Memory {
	return &Memory{products: products}
}

func (m *Memory) ListProducts(context.Context) ([]domain.Product, error) {
	return m.filter(func(domain.Product) bool { return true }), nil
}

func (m *Memory) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	for _, p := range m.products {
		if p.ID == id {
			found := p
			return &found, nil
		}
	}
	return nil, ErrProductNotFound
}

func (m *Memory) ListByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	if category == "" || category == domain.CategoryAll {
		return m.ListProducts(ctx)
	}
	return m.filter(func(p domain.Product) bool { return p.Category == category }), nil
}

func (m *Memory) Search(ctx context.Context, query string) ([]domain.Product, error) {
	if strings.TrimSpace(query) == "" {
		return m.ListProducts(ctx)
	}
	return m.filter(func(p domain.Product) bool { return matches(p, query) }), nil
}

func (m *Memory) filter(keep func(domain.Product) bool) []domain.Product {
	out := make([]domain.Product, 0, len(m.products))
	for _, p := range m.products {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}
