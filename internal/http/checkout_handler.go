package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/fjod/storefront/internal/apperr"
	"github.com/fjod/storefront/internal/checkout"
	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/slips"
)

// multipart overhead allowed on top of the slip itself
const uploadSlack = 1 << 20

type CheckoutHandler struct {
	slips   slips.Store
	timeout time.Duration
}

func NewCheckoutHandler(store slips.Store, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		slips:   store,
		timeout: timeout,
	}
}

// CheckoutResponse is the wizard state. Review is set on the review step.
type CheckoutResponse struct {
	Step     checkout.Step          `json:"step"`
	Shipping domain.ShippingDetails `json:"shipping"`
	Payment  domain.PaymentDetails  `json:"payment"`
	Review   *checkout.Review       `json:"review,omitempty"`
}

func checkoutView(flow *checkout.Flow) CheckoutResponse {
	snap := flow.Snapshot()
	resp := CheckoutResponse{
		Step:     snap.Step,
		Shipping: snap.Shipping,
		Payment:  snap.Payment,
	}
	// drafts are echoed back with the card masked and the CVV withheld
	resp.Payment.CardNumber = checkout.MaskCardNumber(resp.Payment.CardNumber)
	resp.Payment.CVV = ""

	if snap.Step == checkout.StepReview {
		if review, err := flow.Review(); err == nil {
			resp.Review = &review
		}
	}
	return resp
}

// GetCheckout handles GET /api/v1/checkout
func (h *CheckoutHandler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	respondJSON(w, http.StatusOK, checkoutView(sess.Checkout))
}

// PutShipping handles PUT /api/v1/checkout/shipping
func (h *CheckoutHandler) PutShipping(w http.ResponseWriter, r *http.Request) {
	var req domain.ShippingDetails
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	sess := sessionFromContext(r.Context())
	if err := sess.Checkout.SetShipping(req); err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, checkoutView(sess.Checkout))
}

// PutPayment handles PUT /api/v1/checkout/payment
func (h *CheckoutHandler) PutPayment(w http.ResponseWriter, r *http.Request) {
	var req domain.PaymentDetails
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	// slips only arrive through the upload endpoint
	req.UploadedSlip = nil

	sess := sessionFromContext(r.Context())
	if err := sess.Checkout.SetPayment(req); err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, checkoutView(sess.Checkout))
}

// UploadSlip handles POST /api/v1/checkout/slip with the file in the "slip"
// form field.
func (h *CheckoutHandler) UploadSlip(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, slips.MaxSlipSize+uploadSlack)
	file, header, err := r.FormFile("slip")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondErr(w, r, apperr.Validation("the slip is larger than 5 MB", "slip"))
			return
		}
		respondErr(w, r, apperr.Validation("please choose a slip to upload", "slip"))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if err := slips.Check(header.Filename, contentType, header.Size); err != nil {
		respondErr(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sess := sessionFromContext(r.Context())
	ref, err := h.slips.Put(ctx, sess.ID, header.Filename, contentType, file, header.Size)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	if err := sess.Checkout.AttachSlip(ref); err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, checkoutView(sess.Checkout))
}

// Next handles POST /api/v1/checkout/next
func (h *CheckoutHandler) Next(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	if _, err := sess.Checkout.Next(); err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, checkoutView(sess.Checkout))
}

// Back handles POST /api/v1/checkout/back
func (h *CheckoutHandler) Back(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	if _, err := sess.Checkout.Back(); err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, checkoutView(sess.Checkout))
}

// Submit handles POST /api/v1/checkout/submit
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	user := userFromContext(r.Context())

	confirmation, err := sess.Checkout.Submit(r.Context(), user.ID)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, confirmation)
}
