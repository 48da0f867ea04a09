package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/orders"
	"github.com/go-chi/chi/v5"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

const qrSize = 256

type OrdersHandler struct {
	orders  orders.Service
	tracker *orders.Tracker
	baseURL string
	timeout time.Duration
}

func NewOrdersHandler(service orders.Service, tracker *orders.Tracker, baseURL string, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		orders:  service,
		tracker: tracker,
		baseURL: baseURL,
		timeout: timeout,
	}
}

type OrdersResponse struct {
	Orders []*domain.Order `json:"orders"`
	Count  int             `json:"count"`
}

// TrackedOrder is the part of an order shown on the tracking page. Contact
// and delivery details are only filled in for the owner of the order.
type TrackedOrder struct {
	ID              string             `json:"id"`
	Status          domain.OrderStatus `json:"status"`
	Items           []domain.OrderItem `json:"items"`
	Total           float64            `json:"total"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
	PaymentMethod   string             `json:"payment_method,omitempty"`
	Email           string             `json:"email,omitempty"`
	ShippingAddress *domain.Address    `json:"shipping_address,omitempty"`
}

func trackedOrder(order *domain.Order, viewer *domain.User) TrackedOrder {
	out := TrackedOrder{
		ID:        order.ID,
		Status:    order.Status,
		Items:     order.Items,
		Total:     order.Total,
		CreatedAt: order.CreatedAt,
		UpdatedAt: order.UpdatedAt,
	}
	if viewer != nil && viewer.ID == order.UserID {
		address := order.ShippingAddress
		out.PaymentMethod = order.PaymentMethod
		out.Email = order.Email
		out.ShippingAddress = &address
	}
	return out
}

// TrackingResponse is an order with its progress through fulfilment.
type TrackingResponse struct {
	Order          TrackedOrder  `json:"order"`
	Steps          []orders.Step `json:"steps"`
	CompletedSteps int           `json:"completed_steps"`
	TrackingURL    string        `json:"tracking_url"`
}

// ListOrders handles GET /api/v1/orders
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	user := userFromContext(r.Context())
	list, err := h.orders.ListOrders(ctx, user.ID)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	if list == nil {
		list = []*domain.Order{}
	}

	respondJSON(w, http.StatusOK, OrdersResponse{
		Orders: list,
		Count:  len(list),
	})
}

// TrackOrder handles GET /api/v1/orders/{order_id}. Any visitor holding an
// order id may follow its progress; only the owner sees where it is going.
func (h *OrdersHandler) TrackOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	order, err := h.tracker.Track(ctx, chi.URLParam(r, "order_id")).Unpack()
	if err != nil {
		respondErr(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, TrackingResponse{
		Order:          trackedOrder(order, userFromContext(r.Context())),
		Steps:          orders.Progress(order.Status),
		CompletedSteps: orders.CompletedSteps(order.Status),
		TrackingURL:    h.trackingURL(order.ID),
	})
}

// QRCode handles GET /api/v1/orders/{order_id}/qr and renders a PNG that
// links to the tracking page of the order.
func (h *OrdersHandler) QRCode(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	order, err := h.tracker.Track(ctx, chi.URLParam(r, "order_id")).Unpack()
	if err != nil {
		respondErr(w, r, err)
		return
	}

	png, err := qrcode.Encode(h.trackingURL(order.ID), qrcode.Medium, qrSize)
	if err != nil {
		requestLogger(r).Error("failed to encode tracking qr code", zap.String("order_id", order.ID), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "qr_error", "could not render the QR code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (h *OrdersHandler) trackingURL(orderID string) string {
	return h.baseURL + "/track-order/" + orderID
}
