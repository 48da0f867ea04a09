// Package orders creates orders, looks them up and turns their status into
// tracking progress.
package orders

import (
	"context"
	"errors"

	"github.com/fjod/storefront/internal/domain"
)

var ErrOrderNotFound = errors.New("order not found")

// Service is the order backend used by checkout, tracking and history.
type Service interface {
	// CreateOrder stores the draft and returns the id assigned to it.
	CreateOrder(ctx context.Context, draft domain.OrderDraft) (string, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	// ListOrders returns the orders of userID, newest first.
	ListOrders(ctx context.Context, userID string) ([]*domain.Order, error)
}
