// Package storage persists cart state across sessions.
package storage

import (
	"context"
	"errors"

	"github.com/fjod/storefront/internal/domain"
)

var (
	ErrNotFound = errors.New("cart not found in storage")
	ErrCorrupt  = errors.New("stored cart is corrupt")
)

// CartStorage is the durable key-value store behind a cart. Load returns
// ErrNotFound when nothing is stored under key.
type CartStorage interface {
	Load(ctx context.Context, key string) (*domain.CartState, error)
	Save(ctx context.Context, key string, state domain.CartState) error
	Delete(ctx context.Context, key string) error
}
