// Package checkout runs the three step checkout wizard of one session and
// turns a reviewed cart into an order.
package checkout

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fjod/storefront/internal/apperr"
	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/pricing"
	"github.com/fjod/storefront/internal/publisher"
	"go.uber.org/zap"
)

var (
	ErrEmptyCart            = errors.New("cart is empty, nothing to checkout")
	ErrIllegalTransition    = errors.New("illegal transition of checkout step")
	ErrSubmissionInProgress = errors.New("order submission already in progress")
)

type CartSource interface {
	State() domain.CartState
	ClearCart(ctx context.Context) domain.CartState
}

type OrderCreator interface {
	CreateOrder(ctx context.Context, draft domain.OrderDraft) (string, error)
}

type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, event publisher.OrderPlaced) error
}

type Options struct {
	Pricing        pricing.Policy
	OrderTimeout   time.Duration
	PublishTimeout time.Duration
}

func DefaultOptions() Options {
	return Options{
		Pricing:        pricing.Default(),
		OrderTimeout:   10 * time.Second,
		PublishTimeout: 5 * time.Second,
	}
}

// Snapshot is the wizard as the UI renders it.
type Snapshot struct {
	Step     Step                   `json:"step"`
	Shipping domain.ShippingDetails `json:"shipping"`
	Payment  domain.PaymentDetails  `json:"payment"`
}

type Review struct {
	Shipping  domain.ShippingDetails `json:"shipping"`
	Payment   domain.PaymentDetails  `json:"payment"`
	Cart      domain.CartState       `json:"cart"`
	Breakdown pricing.Breakdown      `json:"breakdown"`
}

type Confirmation struct {
	OrderID   string            `json:"order_id"`
	Total     float64           `json:"total"`
	Breakdown pricing.Breakdown `json:"breakdown"`
}

// Flow is the checkout wizard of one session. Drafts survive moving back and
// forth between steps; a successful submission resets them.
type Flow struct {
	mu       sync.Mutex
	step     Step
	shipping domain.ShippingDetails
	payment  domain.PaymentDetails

	cart   CartSource
	orders OrderCreator
	events EventPublisher
	opts   Options
	logger *zap.Logger
	now    func() time.Time
}

func NewFlow(cart CartSource, orders OrderCreator, events EventPublisher, opts Options, logger *zap.Logger) *Flow {
	f := &Flow{
		cart:   cart,
		orders: orders,
		events: events,
		opts:   opts,
		logger: logger,
		now:    time.Now,
	}
	f.reset()
	return f
}

// Reset discards both drafts and returns to the shipping step. It fails
// while an order is being submitted.
func (f *Flow) Reset() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step == StepSubmitting {
		return ErrSubmissionInProgress
	}
	f.reset()
	return nil
}

// reset must be called with mu held or before the flow is shared.
func (f *Flow) reset() {
	f.step = StepShipping
	f.shipping = domain.ShippingDetails{Country: domain.DefaultCountry}
	f.payment = domain.PaymentDetails{PaymentMethod: domain.PaymentCreditCard}
}

func (f *Flow) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

func (f *Flow) Shipping() domain.ShippingDetails {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.shipping
}

func (f *Flow) Payment() domain.PaymentDetails {
	f.mu.Lock()
	defer f.mu.Unlock()
	return copyPayment(f.payment)
}

func (f *Flow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Snapshot{Step: f.step, Shipping: f.shipping, Payment: copyPayment(f.payment)}
}

func (f *Flow) SetShipping(d domain.ShippingDetails) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step == StepSubmitting {
		return ErrSubmissionInProgress
	}
	f.shipping = d
	return nil
}

// SetPayment replaces the payment draft. A previously attached slip is kept
// unless d carries its own. An empty method means credit card.
func (f *Flow) SetPayment(d domain.PaymentDetails) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step == StepSubmitting {
		return ErrSubmissionInProgress
	}
	if d.PaymentMethod == "" {
		d.PaymentMethod = domain.PaymentCreditCard
	}
	if d.UploadedSlip == nil {
		d.UploadedSlip = f.payment.UploadedSlip
	}
	f.payment = copyPayment(d)
	return nil
}

func (f *Flow) AttachSlip(ref domain.SlipRef) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step == StepSubmitting {
		return ErrSubmissionInProgress
	}
	f.payment.UploadedSlip = &ref
	return nil
}

// Next advances one step when the current step's draft is complete. On a
// validation failure the step is unchanged.
func (f *Flow) Next() (Step, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var (
		to  Step
		err error
	)
	switch f.step {
	case StepShipping:
		to, err = StepPayment, ValidateShipping(f.shipping)
	case StepPayment:
		to, err = StepReview, ValidatePayment(f.payment)
	case StepSubmitting:
		return f.step, ErrSubmissionInProgress
	default:
		return f.step, ErrIllegalTransition
	}
	if err != nil {
		return f.step, err
	}
	f.step = to
	return f.step, nil
}

func (f *Flow) Back() (Step, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var to Step
	switch f.step {
	case StepPayment:
		to = StepShipping
	case StepReview:
		to = StepPayment
	case StepSubmitting:
		return f.step, ErrSubmissionInProgress
	default:
		return f.step, ErrIllegalTransition
	}
	if !CanTransitionTo(f.step, to) {
		return f.step, ErrIllegalTransition
	}
	f.step = to
	return f.step, nil
}

// Review summarises the order about to be placed. The card number is masked
// and the CVV dropped.
func (f *Flow) Review() (Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step != StepReview {
		return Review{}, ErrIllegalTransition
	}

	state := f.cart.State()
	payment := copyPayment(f.payment)
	payment.CardNumber = MaskCardNumber(payment.CardNumber)
	payment.CVV = ""

	return Review{
		Shipping:  f.shipping,
		Payment:   payment,
		Cart:      state,
		Breakdown: f.opts.Pricing.Quote(state.Total),
	}, nil
}

// Submit places the order for the reviewed cart. Only one submission runs at
// a time. On success the cart is cleared and the wizard starts over; on
// failure it returns to review so the user can submit again.
func (f *Flow) Submit(ctx context.Context, userID string) (Confirmation, error) {
	f.mu.Lock()
	switch f.step {
	case StepReview:
	case StepSubmitting:
		f.mu.Unlock()
		return Confirmation{}, ErrSubmissionInProgress
	default:
		f.mu.Unlock()
		return Confirmation{}, ErrIllegalTransition
	}

	state := f.cart.State()
	if state.IsEmpty() {
		f.mu.Unlock()
		return Confirmation{}, &apperr.Error{Kind: apperr.KindValidation, Message: "your cart is empty", Err: ErrEmptyCart}
	}

	breakdown := f.opts.Pricing.Quote(state.Total)
	draft := domain.OrderDraft{
		UserID:          userID,
		Items:           domain.OrderItemsFromCart(state),
		Total:           breakdown.Total,
		PaymentMethod:   f.payment.PaymentMethod.Label(),
		ShippingAddress: domain.AddressFromShipping(f.shipping),
		Email:           f.shipping.Email,
	}
	f.step = StepSubmitting
	f.mu.Unlock()

	orderCtx, cancel := context.WithTimeout(ctx, f.opts.OrderTimeout)
	orderID, err := f.orders.CreateOrder(orderCtx, draft)
	cancel()

	if err != nil {
		f.mu.Lock()
		f.step = StepReview
		f.mu.Unlock()
		f.logger.Error("order submission failed", zap.String("user_id", userID), zap.Error(err))
		return Confirmation{}, apperr.Service("we could not place your order, please try again", err)
	}

	f.cart.ClearCart(ctx)

	f.mu.Lock()
	f.reset()
	f.mu.Unlock()

	f.publish(ctx, orderID, draft, breakdown)

	return Confirmation{OrderID: orderID, Total: breakdown.Total, Breakdown: breakdown}, nil
}

// publish announces the order. A failure is logged only; the order exists.
func (f *Flow) publish(ctx context.Context, orderID string, draft domain.OrderDraft, breakdown pricing.Breakdown) {
	items := make([]publisher.OrderPlacedItem, len(draft.Items))
	for i, it := range draft.Items {
		items[i] = publisher.OrderPlacedItem{
			ProductID: it.Product.ID,
			Name:      it.Product.Name,
			Price:     it.Product.Price,
			Quantity:  it.Quantity,
		}
	}
	event := publisher.OrderPlaced{
		OrderID:       orderID,
		UserID:        draft.UserID,
		Email:         draft.Email,
		Items:         items,
		Subtotal:      breakdown.Subtotal,
		Shipping:      breakdown.Shipping,
		Tax:           breakdown.Tax,
		Total:         breakdown.Total,
		PaymentMethod: draft.PaymentMethod,
		PlacedAt:      f.now().UTC(),
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.opts.PublishTimeout)
	defer cancel()
	if err := f.events.PublishOrderPlaced(pubCtx, event); err != nil {
		f.logger.Warn("order placed event not published", zap.String("order_id", orderID), zap.Error(err))
	}
}

func copyPayment(d domain.PaymentDetails) domain.PaymentDetails {
	if d.UploadedSlip != nil {
		slip := *d.UploadedSlip
		d.UploadedSlip = &slip
	}
	return d
}
