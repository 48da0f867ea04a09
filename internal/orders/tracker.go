package orders

import (
	"context"
	"errors"
	"strings"

	"github.com/fjod/storefront/internal/apperr"
	"github.com/fjod/storefront/internal/domain"
	"go.uber.org/zap"
)

const (
	msgMissingOrderID = "please enter an order ID"
	msgOrderNotFound  = "order not found, please check the ID and try again"
	msgTrackingFailed = "order tracking is unavailable, please try again"
)

// Tracker looks up a single order for the tracking page and classifies every
// failure so callers never see a raw backend error.
type Tracker struct {
	orders Service
	logger *zap.Logger
}

func NewTracker(orders Service, logger *zap.Logger) *Tracker {
	return &Tracker{orders: orders, logger: logger}
}

func (t *Tracker) Track(ctx context.Context, orderID string) apperr.Result[*domain.Order] {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return apperr.Fail[*domain.Order](apperr.Validation(msgMissingOrderID, "order_id"))
	}

	order, err := t.orders.GetOrder(ctx, orderID)
	switch {
	case err == nil:
	case errors.Is(err, ErrOrderNotFound):
		return apperr.Fail[*domain.Order](apperr.NotFound(msgOrderNotFound, err))
	default:
		t.logger.Error("order lookup failed", zap.String("order_id", orderID), zap.Error(err))
		return apperr.Fail[*domain.Order](apperr.Service(msgTrackingFailed, err))
	}

	if order.Status.Rank() < 0 {
		t.logger.Warn("order has unknown status, showing as pending",
			zap.String("order_id", orderID), zap.String("status", order.Status.String()))
	}
	return apperr.Ok(order)
}
