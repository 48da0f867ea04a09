package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fjod/storefront/internal/apperr"
	"github.com/fjod/storefront/internal/catalog"
	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/pricing"
	"github.com/go-chi/chi/v5"
)

type CartHandler struct {
	catalog catalog.Provider
	pricing pricing.Policy
	timeout time.Duration
}

func NewCartHandler(provider catalog.Provider, policy pricing.Policy, timeout time.Duration) *CartHandler {
	return &CartHandler{
		catalog: provider,
		pricing: policy,
		timeout: timeout,
	}
}

type AddItemRequest struct {
	ProductID string `json:"product_id"`
}

type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

// CartView is the cart as the storefront renders it.
type CartView struct {
	Items     []domain.CartLineItem `json:"items"`
	Total     float64               `json:"total"`
	ItemCount int                   `json:"item_count"`
	Empty     bool                  `json:"empty"`
	Breakdown pricing.Breakdown     `json:"breakdown"`
	Message   string                `json:"message,omitempty"`
}

func newCartView(state domain.CartState, policy pricing.Policy) CartView {
	items := state.Items
	if items == nil {
		items = []domain.CartLineItem{}
	}
	return CartView{
		Items:     items,
		Total:     state.Total,
		ItemCount: state.ItemCount(),
		Empty:     state.IsEmpty(),
		Breakdown: policy.Quote(state.Total),
	}
}

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	respondJSON(w, http.StatusOK, newCartView(sess.Cart.State(), h.pricing))
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	req.ProductID = strings.TrimSpace(req.ProductID)
	if req.ProductID == "" {
		respondErr(w, r, apperr.Validation("product_id is required", "product_id"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	product, err := h.catalog.GetProduct(ctx, req.ProductID)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	sess := sessionFromContext(r.Context())
	view := newCartView(sess.Cart.AddItem(ctx, *product), h.pricing)
	view.Message = fmt.Sprintf("%s added to cart", product.Name)
	respondJSON(w, http.StatusCreated, view)
}

// UpdateQuantity handles PUT /api/v1/cart/items/{product_id}. A quantity of
// zero or less removes the line.
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if req.Quantity == nil {
		respondErr(w, r, apperr.Validation("quantity is required", "quantity"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sess := sessionFromContext(r.Context())
	state := sess.Cart.UpdateQuantity(ctx, chi.URLParam(r, "product_id"), *req.Quantity)
	respondJSON(w, http.StatusOK, newCartView(state, h.pricing))
}

// RemoveItem handles DELETE /api/v1/cart/items/{product_id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sess := sessionFromContext(r.Context())
	state := sess.Cart.RemoveItem(ctx, chi.URLParam(r, "product_id"))
	respondJSON(w, http.StatusOK, newCartView(state, h.pricing))
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sess := sessionFromContext(r.Context())
	respondJSON(w, http.StatusOK, newCartView(sess.Cart.ClearCart(ctx), h.pricing))
}
