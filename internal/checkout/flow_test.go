package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fjod/storefront/internal/apperr"
	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/publisher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type mockCart struct {
	mu      sync.Mutex
	state   domain.CartState
	cleared int
}

func (m *mockCart) State() domain.CartState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone()
}

func (m *mockCart) ClearCart(context.Context) domain.CartState {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleared++
	m.state = domain.CartState{}
	return m.state
}

type mockOrders struct {
	mu      sync.Mutex
	drafts  []domain.OrderDraft
	err     error
	id      string
	release chan struct{}
	started chan struct{}
}

func (m *mockOrders) CreateOrder(ctx context.Context, draft domain.OrderDraft) (string, error) {
	if m.started != nil {
		close(m.started)
	}
	if m.release != nil {
		select {
		case <-m.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drafts = append(m.drafts, draft)
	if m.err != nil {
		return "", m.err
	}
	return m.id, nil
}

type mockEvents struct {
	mu     sync.Mutex
	events []publisher.OrderPlaced
	err    error
}

func (m *mockEvents) PublishOrderPlaced(_ context.Context, e publisher.OrderPlaced) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, e)
	return nil
}

func cartWith(items ...domain.CartLineItem) *mockCart {
	state := domain.CartState{Items: items}
	state.Recalculate()
	return &mockCart{state: state}
}

var (
	lamp = domain.CartLineItem{Product: domain.Product{ID: "3", Name: "Modern Desk Lamp", Price: 89.99}, Quantity: 1}
	vase = domain.CartLineItem{Product: domain.Product{ID: "6", Name: "Minimalist Ceramic Vase", Price: 49.99}, Quantity: 2}
)

func validShipping() domain.ShippingDetails {
	return domain.ShippingDetails{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Address:   "1 Analytical Way",
		City:      "London",
		State:     "Greater London",
		ZipCode:   "N1 9GU",
		Country:   "United Kingdom",
	}
}

func validCard() domain.PaymentDetails {
	return domain.PaymentDetails{
		PaymentMethod: domain.PaymentCreditCard,
		CardName:      "Ada Lovelace",
		CardNumber:    "4242 4242 4242 4242",
		ExpiryDate:    "12/29",
		CVV:           "123",
	}
}

type fixture struct {
	flow   *Flow
	cart   *mockCart
	orders *mockOrders
	events *mockEvents
}

func newFixture(cart *mockCart) *fixture {
	orders := &mockOrders{id: "ORD-482913"}
	events := &mockEvents{}
	opts := DefaultOptions()
	opts.OrderTimeout = time.Second
	return &fixture{
		flow:   NewFlow(cart, orders, events, opts, zap.NewNop()),
		cart:   cart,
		orders: orders,
		events: events,
	}
}

// toReview fills both drafts and walks the wizard to review.
func (fx *fixture) toReview(t *testing.T) {
	t.Helper()
	require.NoError(t, fx.flow.SetShipping(validShipping()))
	_, err := fx.flow.Next()
	require.NoError(t, err)
	require.NoError(t, fx.flow.SetPayment(validCard()))
	step, err := fx.flow.Next()
	require.NoError(t, err)
	require.Equal(t, StepReview, step)
}

func TestNewFlow_Defaults(t *testing.T) {
	fx := newFixture(cartWith(lamp))

	assert.Equal(t, StepShipping, fx.flow.Step())
	assert.Equal(t, domain.DefaultCountry, fx.flow.Shipping().Country)
	assert.Equal(t, domain.PaymentCreditCard, fx.flow.Payment().PaymentMethod)
}

func TestReset_DiscardsDrafts(t *testing.T) {
	fx := newFixture(cartWith(lamp))
	fx.toReview(t)

	require.NoError(t, fx.flow.Reset())

	assert.Equal(t, StepShipping, fx.flow.Step())
	assert.Equal(t, domain.ShippingDetails{Country: domain.DefaultCountry}, fx.flow.Shipping())
	assert.Equal(t, domain.PaymentDetails{PaymentMethod: domain.PaymentCreditCard}, fx.flow.Payment())
	assert.Equal(t, 0, fx.cart.cleared)
}

func TestNext_ShippingRequiresAllFields(t *testing.T) {
	fx := newFixture(cartWith(lamp))

	d := validShipping()
	d.City = ""
	d.ZipCode = "  "
	require.NoError(t, fx.flow.SetShipping(d))

	step, err := fx.flow.Next()
	require.Error(t, err)
	assert.Equal(t, StepShipping, step)

	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperr.KindValidation, appErr.Kind)
	assert.Equal(t, []string{"city", "zip_code"}, appErr.Fields)
}

func TestNext_PhoneAndApartmentAreOptional(t *testing.T) {
	fx := newFixture(cartWith(lamp))

	d := validShipping()
	d.Phone, d.Apartment, d.Country = "", "", ""
	require.NoError(t, fx.flow.SetShipping(d))

	step, err := fx.flow.Next()
	require.NoError(t, err)
	assert.Equal(t, StepPayment, step)
}

func TestNext_PaymentRules(t *testing.T) {
	tests := []struct {
		name    string
		payment domain.PaymentDetails
		missing []string
	}{
		{
			name:    "credit card without cvv",
			payment: domain.PaymentDetails{PaymentMethod: domain.PaymentCreditCard, CardName: "A", CardNumber: "4242", ExpiryDate: "12/29"},
			missing: []string{"cvv"},
		},
		{
			name:    "manual slip without upload",
			payment: domain.PaymentDetails{PaymentMethod: domain.PaymentManualSlip},
			missing: []string{"uploaded_slip"},
		},
		{
			name:    "paypal needs nothing",
			payment: domain.PaymentDetails{PaymentMethod: domain.PaymentPayPal},
		},
		{
			name:    "bank transfer needs nothing",
			payment: domain.PaymentDetails{PaymentMethod: domain.PaymentBankTransfer},
		},
		{
			name:    "other methods need nothing",
			payment: domain.PaymentDetails{PaymentMethod: "cash-on-delivery"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(cartWith(lamp))
			require.NoError(t, fx.flow.SetShipping(validShipping()))
			_, err := fx.flow.Next()
			require.NoError(t, err)

			require.NoError(t, fx.flow.SetPayment(tt.payment))
			step, err := fx.flow.Next()

			if tt.missing == nil {
				require.NoError(t, err)
				assert.Equal(t, StepReview, step)
				return
			}
			var appErr *apperr.Error
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tt.missing, appErr.Fields)
			assert.Equal(t, StepPayment, step)
		})
	}
}

func TestNext_ManualSlipAfterUpload(t *testing.T) {
	fx := newFixture(cartWith(lamp))
	require.NoError(t, fx.flow.SetShipping(validShipping()))
	_, err := fx.flow.Next()
	require.NoError(t, err)

	require.NoError(t, fx.flow.AttachSlip(domain.SlipRef{Key: "slips/s1/abc.png", FileName: "receipt.png", ContentType: "image/png", Size: 1024}))
	require.NoError(t, fx.flow.SetPayment(domain.PaymentDetails{PaymentMethod: domain.PaymentManualSlip}))

	step, err := fx.flow.Next()
	require.NoError(t, err)
	assert.Equal(t, StepReview, step)
	assert.Equal(t, "receipt.png", fx.flow.Payment().UploadedSlip.FileName)
}

func TestBack_PreservesDrafts(t *testing.T) {
	fx := newFixture(cartWith(lamp))
	fx.toReview(t)

	step, err := fx.flow.Back()
	require.NoError(t, err)
	assert.Equal(t, StepPayment, step)

	step, err = fx.flow.Back()
	require.NoError(t, err)
	assert.Equal(t, StepShipping, step)

	assert.Equal(t, validShipping(), fx.flow.Shipping())
	assert.Equal(t, validCard(), fx.flow.Payment())

	_, err = fx.flow.Back()
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestNext_FromReviewIsIllegal(t *testing.T) {
	fx := newFixture(cartWith(lamp))
	fx.toReview(t)

	_, err := fx.flow.Next()
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestReview(t *testing.T) {
	fx := newFixture(cartWith(lamp))

	_, err := fx.flow.Review()
	assert.ErrorIs(t, err, ErrIllegalTransition)

	fx.toReview(t)
	review, err := fx.flow.Review()
	require.NoError(t, err)

	assert.Equal(t, "**** **** **** 4242", review.Payment.CardNumber)
	assert.Empty(t, review.Payment.CVV)
	assert.Equal(t, 89.99, review.Breakdown.Subtotal)
	assert.Equal(t, 10.0, review.Breakdown.Shipping)
	assert.InDelta(t, 6.2993, review.Breakdown.Tax, 1e-9)
	assert.Len(t, review.Cart.Items, 1)

	// the draft itself is not masked
	assert.Equal(t, "4242 4242 4242 4242", fx.flow.Payment().CardNumber)
}

func TestSubmit_Success(t *testing.T) {
	fx := newFixture(cartWith(lamp, vase))
	fx.toReview(t)

	conf, err := fx.flow.Submit(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, "ORD-482913", conf.OrderID)
	// 189.97 subtotal ships free, 7% tax
	assert.InDelta(t, 189.97, conf.Breakdown.Subtotal, 1e-9)
	assert.Zero(t, conf.Breakdown.Shipping)
	assert.InDelta(t, 203.2679, conf.Total, 1e-9)

	require.Len(t, fx.orders.drafts, 1)
	draft := fx.orders.drafts[0]
	assert.Equal(t, "user-1", draft.UserID)
	assert.Equal(t, "Credit Card", draft.PaymentMethod)
	assert.Equal(t, "Ada Lovelace", draft.ShippingAddress.Name)
	assert.Equal(t, "ada@example.com", draft.Email)
	assert.Len(t, draft.Items, 2)

	assert.Equal(t, 1, fx.cart.cleared)
	assert.Equal(t, StepShipping, fx.flow.Step())
	assert.Equal(t, domain.ShippingDetails{Country: domain.DefaultCountry}, fx.flow.Shipping())

	require.Len(t, fx.events.events, 1)
	assert.Equal(t, "ORD-482913", fx.events.events[0].OrderID)
	assert.Len(t, fx.events.events[0].Items, 2)
}

func TestSubmit_EmptyCart(t *testing.T) {
	fx := newFixture(&mockCart{})
	fx.toReview(t)

	_, err := fx.flow.Submit(context.Background(), "user-1")
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, StepReview, fx.flow.Step())
	assert.Empty(t, fx.orders.drafts)
}

func TestSubmit_OnlyFromReview(t *testing.T) {
	fx := newFixture(cartWith(lamp))

	_, err := fx.flow.Submit(context.Background(), "user-1")
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestSubmit_ServiceFailureReturnsToReview(t *testing.T) {
	fx := newFixture(cartWith(lamp))
	fx.orders.err = errors.New("connection reset")
	fx.toReview(t)

	_, err := fx.flow.Submit(context.Background(), "user-1")
	require.Error(t, err)
	assert.Equal(t, apperr.KindService, apperr.KindOf(err))
	assert.True(t, apperr.As(err).Retryable())

	assert.Equal(t, StepReview, fx.flow.Step())
	assert.Zero(t, fx.cart.cleared)
	assert.False(t, fx.cart.State().IsEmpty())
	assert.Empty(t, fx.events.events)

	fx.orders.err = nil
	conf, err := fx.flow.Submit(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "ORD-482913", conf.OrderID)
}

func TestSubmit_Timeout(t *testing.T) {
	fx := newFixture(cartWith(lamp))
	fx.flow.opts.OrderTimeout = 20 * time.Millisecond
	fx.orders.release = make(chan struct{})
	fx.toReview(t)

	_, err := fx.flow.Submit(context.Background(), "user-1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, StepReview, fx.flow.Step())
}

func TestSubmit_ConcurrentSubmissionRejected(t *testing.T) {
	fx := newFixture(cartWith(lamp))
	fx.orders.release = make(chan struct{})
	fx.orders.started = make(chan struct{})
	fx.toReview(t)

	done := make(chan error, 1)
	go func() {
		_, err := fx.flow.Submit(context.Background(), "user-1")
		done <- err
	}()
	<-fx.orders.started

	assert.Equal(t, StepSubmitting, fx.flow.Step())
	_, err := fx.flow.Submit(context.Background(), "user-1")
	assert.ErrorIs(t, err, ErrSubmissionInProgress)
	_, err = fx.flow.Back()
	assert.ErrorIs(t, err, ErrSubmissionInProgress)
	assert.ErrorIs(t, fx.flow.SetShipping(validShipping()), ErrSubmissionInProgress)
	assert.ErrorIs(t, fx.flow.Reset(), ErrSubmissionInProgress)

	close(fx.orders.release)
	require.NoError(t, <-done)
	assert.Len(t, fx.orders.drafts, 1)
}

func TestSubmit_PublishFailureIsLoggedOnly(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	fx := newFixture(cartWith(lamp))
	fx.flow.logger = zap.New(core)
	fx.events.err = errors.New("broker down")
	fx.toReview(t)

	conf, err := fx.flow.Submit(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "ORD-482913", conf.OrderID)
	assert.Equal(t, 1, logs.FilterMessage("order placed event not published").Len())
}

func TestCanTransitionTo(t *testing.T) {
	assert.True(t, CanTransitionTo(StepShipping, StepPayment))
	assert.True(t, CanTransitionTo(StepReview, StepSubmitting))
	assert.True(t, CanTransitionTo(StepSubmitting, StepShipping))
	assert.False(t, CanTransitionTo(StepShipping, StepReview))
	assert.False(t, CanTransitionTo(StepShipping, StepSubmitting))
	assert.False(t, CanTransitionTo(StepPayment, StepSubmitting))
}

func TestMaskCardNumber(t *testing.T) {
	assert.Equal(t, "**** **** **** 1111", MaskCardNumber("4111-1111-1111-1111"))
	assert.Equal(t, "**** 42", MaskCardNumber("42"))
	assert.Equal(t, "", MaskCardNumber(""))
}
