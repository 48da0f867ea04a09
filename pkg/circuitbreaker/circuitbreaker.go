// Package circuitbreaker stops calling a failing dependency for a cooldown
// period after a run of consecutive failures.
package circuitbreaker

import (
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// ErrOpen is returned without calling the dependency while the breaker is
// open, or while a half-open trial call is already in flight.
var ErrOpen = errors.New("circuit breaker is open")

type State = gobreaker.State

const (
	StateClosed   = gobreaker.StateClosed
	StateHalfOpen = gobreaker.StateHalfOpen
	StateOpen     = gobreaker.StateOpen
)

type Option func(*gobreaker.Settings)

// WithIgnored keeps errors matched by ignore from counting as failures.
// They are still returned to the caller.
func WithIgnored(ignore func(error) bool) Option {
	return func(s *gobreaker.Settings) {
		s.IsSuccessful = func(err error) bool {
			return err == nil || ignore(err)
		}
	}
}

// WithLogger logs every state change.
func WithLogger(logger *zap.Logger) Option {
	return func(s *gobreaker.Settings) {
		s.OnStateChange = func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		}
	}
}

type Breaker struct {
	cb *gobreaker.CircuitBreaker[struct{}]
}

// New opens the breaker after threshold consecutive failures and lets a
// single trial call through once cooldown has passed.
func New(name string, threshold int, cooldown time.Duration, opts ...Option) *Breaker {
	if threshold < 1 {
		threshold = 1
	}
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(threshold)
		},
	}
	for _, opt := range opts {
		opt(&settings)
	}
	return &Breaker{cb: gobreaker.NewCircuitBreaker[struct{}](settings)}
}

func (b *Breaker) State() State {
	return b.cb.State()
}

func (b *Breaker) Execute(fn func() error) error {
	_, err := b.cb.Execute(func() (struct{}, error) {
		return struct{}{}, fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrOpen
	}
	return err
}
