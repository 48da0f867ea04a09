package orders

import (
	"context"
	"errors"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/pkg/circuitbreaker"
	"go.uber.org/zap"
)

type GuardOptions struct {
	Timeout      time.Duration
	ReadAttempts int
	RetryBackoff time.Duration
	// FailureThreshold consecutive failures open the breaker for Cooldown.
	FailureThreshold int
	Cooldown         time.Duration
	// Logger, when set, receives breaker state changes.
	Logger *zap.Logger
}

func DefaultGuardOptions() GuardOptions {
	return GuardOptions{
		Timeout:          5 * time.Second,
		ReadAttempts:     3,
		RetryBackoff:     100 * time.Millisecond,
		FailureThreshold: 5,
		Cooldown:         30 * time.Second,
	}
}

// Guarded bounds every call to a remote order backend with a timeout and a
// circuit breaker. Reads are retried; CreateOrder is attempted once so a slow
// write can never produce a second order.
type Guarded struct {
	next    Service
	opts    GuardOptions
	breaker *circuitbreaker.Breaker
}

func NewGuarded(next Service, opts GuardOptions) *Guarded {
	if opts.ReadAttempts < 1 {
		opts.ReadAttempts = 1
	}
	breakerOpts := []circuitbreaker.Option{
		circuitbreaker.WithIgnored(func(err error) bool {
			return errors.Is(err, ErrOrderNotFound) || errors.Is(err, context.Canceled)
		}),
	}
	if opts.Logger != nil {
		breakerOpts = append(breakerOpts, circuitbreaker.WithLogger(opts.Logger))
	}
	breaker := circuitbreaker.New("orders", opts.FailureThreshold, opts.Cooldown, breakerOpts...)
	return &Guarded{next: next, opts: opts, breaker: breaker}
}

func (g *Guarded) CreateOrder(ctx context.Context, draft domain.OrderDraft) (string, error) {
	var id string
	err := g.call(ctx, func(ctx context.Context) error {
		var err error
		id, err = g.next.CreateOrder(ctx, draft)
		return err
	})
	return id, err
}

func (g *Guarded) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	var order *domain.Order
	err := g.retry(ctx, func(ctx context.Context) error {
		var err error
		order, err = g.next.GetOrder(ctx, id)
		return err
	})
	return order, err
}

func (g *Guarded) ListOrders(ctx context.Context, userID string) ([]*domain.Order, error) {
	var list []*domain.Order
	err := g.retry(ctx, func(ctx context.Context) error {
		var err error
		list, err = g.next.ListOrders(ctx, userID)
		return err
	})
	return list, err
}

func (g *Guarded) retry(ctx context.Context, fn func(context.Context) error) error {
	var err error
	for attempt := 1; attempt <= g.opts.ReadAttempts; attempt++ {
		err = g.call(ctx, fn)
		if err == nil || errors.Is(err, ErrOrderNotFound) || errors.Is(err, circuitbreaker.ErrOpen) {
			return err
		}
		if attempt == g.opts.ReadAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(g.opts.RetryBackoff * time.Duration(attempt)):
		}
	}
	return err
}

func (g *Guarded) call(ctx context.Context, fn func(context.Context) error) error {
	return g.breaker.Execute(func() error {
		callCtx := ctx
		if g.opts.Timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, g.opts.Timeout)
			defer cancel()
		}
		return fn(callCtx)
	})
}
