// Package cart holds the shopping cart of a single session.
package cart

import (
	"context"
	"errors"
	"sync"

	"github.com/fjod/storefront/internal/apperr"
	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/storage"
	"go.uber.org/zap"
)

type Action string

const (
	ActionAdded   Action = "added"
	ActionRemoved Action = "removed"
	ActionUpdated Action = "updated"
	ActionCleared Action = "cleared"
)

// Change describes one committed mutation. State is the cart after it.
type Change struct {
	Action      Action           `json:"action"`
	ProductID   string           `json:"product_id,omitempty"`
	ProductName string           `json:"product_name,omitempty"`
	State       domain.CartState `json:"state"`
}

type Listener func(Change)

// Store is the authoritative cart of one session. Every mutation recomputes
// the total, writes the cart to storage and then notifies listeners.
// Listeners see changes in commit order and must not mutate the store.
type Store struct {
	// notifyMu is taken before mu and held until listeners have run.
	notifyMu  sync.Mutex
	mu        sync.Mutex
	key       string
	state     domain.CartState
	storage   storage.CartStorage
	logger    *zap.Logger
	listeners map[int]Listener
	nextID    int
	done      chan struct{}
	closeOnce sync.Once
}

// NewStore rehydrates the cart saved under key. A missing, unreadable or
// corrupt cart yields an empty one.
func NewStore(ctx context.Context, key string, cartStorage storage.CartStorage, logger *zap.Logger) *Store {
	s := &Store{
		key:       key,
		storage:   cartStorage,
		logger:    logger,
		listeners: make(map[int]Listener),
		done:      make(chan struct{}),
	}

	saved, err := cartStorage.Load(ctx, key)
	switch {
	case err == nil:
		s.state = normalize(*saved)
	case errors.Is(err, storage.ErrNotFound):
	default:
		logger.Warn("cart rehydration failed, starting empty",
			zap.String("cart_key", key),
			zap.Error(apperr.Persistence("failed to load cart", err)))
	}

	return s
}

// normalize drops lines below quantity one, merges duplicate products and
// recomputes the total.
func normalize(saved domain.CartState) domain.CartState {
	var state domain.CartState
	for _, item := range saved.Items {
		if item.Quantity < 1 || item.ID == "" {
			continue
		}
		if i := state.Find(item.ID); i >= 0 {
			state.Items[i].Quantity += item.Quantity
			continue
		}
		state.Items = append(state.Items, item)
	}
	state.Recalculate()
	return state
}

func (s *Store) Key() string {
	return s.key
}

// State returns a copy of the current cart.
func (s *Store) State() domain.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

func (s *Store) AddItem(ctx context.Context, product domain.Product) domain.CartState {
	return s.mutate(ctx, func(state *domain.CartState) (Change, bool) {
		if i := state.Find(product.ID); i >= 0 {
			state.Items[i].Quantity++
		} else {
			state.Items = append(state.Items, domain.CartLineItem{Product: product, Quantity: 1})
		}
		return Change{Action: ActionAdded, ProductID: product.ID, ProductName: product.Name}, true
	})
}

// RemoveItem deletes the line for productID. Removing a product that is not
// in the cart changes nothing.
func (s *Store) RemoveItem(ctx context.Context, productID string) domain.CartState {
	return s.mutate(ctx, func(state *domain.CartState) (Change, bool) {
		return removeLine(state, productID)
	})
}

// UpdateQuantity sets the quantity of an existing line. A quantity of zero or
// less removes the line.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) domain.CartState {
	return s.mutate(ctx, func(state *domain.CartState) (Change, bool) {
		if quantity <= 0 {
			return removeLine(state, productID)
		}
		i := state.Find(productID)
		if i < 0 {
			return Change{}, false
		}
		state.Items[i].Quantity = quantity
		return Change{Action: ActionUpdated, ProductID: productID, ProductName: state.Items[i].Name}, true
	})
}

func (s *Store) ClearCart(ctx context.Context) domain.CartState {
	return s.mutate(ctx, func(state *domain.CartState) (Change, bool) {
		state.Items = nil
		return Change{Action: ActionCleared}, true
	})
}

func removeLine(state *domain.CartState, productID string) (Change, bool) {
	i := state.Find(productID)
	if i < 0 {
		return Change{}, false
	}
	name := state.Items[i].Name
	state.Items = append(state.Items[:i], state.Items[i+1:]...)
	return Change{Action: ActionRemoved, ProductID: productID, ProductName: name}, true
}

// Subscribe registers a listener for committed changes. The returned function
// unsubscribes it and may be called more than once.
func (s *Store) Subscribe(listener Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = listener
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// Subscribers reports how many listeners are registered.
func (s *Store) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners)
}

// Done is closed once the store is closed.
func (s *Store) Done() <-chan struct{} {
	return s.done
}

// Close drops every listener and closes Done. It is safe to call twice.
func (s *Store) Close() {
	s.mu.Lock()
	s.listeners = make(map[int]Listener)
	s.mu.Unlock()
	s.closeOnce.Do(func() { close(s.done) })
}

func (s *Store) mutate(ctx context.Context, apply func(*domain.CartState) (Change, bool)) domain.CartState {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	next := s.state.Clone()
	change, changed := apply(&next)
	if !changed {
		s.mu.Unlock()
		return next
	}
	next.Recalculate()
	s.state = next
	s.persist(ctx, next)

	change.State = next.Clone()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(change)
	}
	return next.Clone()
}

// persist must be called with mu held. Failures leave the in-memory cart
// authoritative.
func (s *Store) persist(ctx context.Context, state domain.CartState) {
	if err := s.storage.Save(ctx, s.key, state); err != nil {
		s.logger.Error("cart save failed",
			zap.String("cart_key", s.key),
			zap.Error(apperr.Persistence("failed to save cart", err)))
	}
}
