package orders

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/fjod/storefront/internal/domain"
)

// NewMockOrderID returns "ORD-" followed by six random digits. Collisions are
// possible and not checked.
func NewMockOrderID() string {
	return fmt.Sprintf("ORD-%d", 100000+rand.Intn(900000))
}

// Memory is the in-process order backend used in mock mode.
type Memory struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order
	newID  func() string
	now    func() time.Time
}

func NewMemory(seed []*domain.Order) *Memory {
	m := &Memory{
		orders: make(map[string]*domain.Order, len(seed)),
		newID:  NewMockOrderID,
		now:    time.Now,
	}
	for _, o := range seed {
		stored := *o
		m.orders[o.ID] = &stored
	}
	return m
}

func (m *Memory) CreateOrder(_ context.Context, draft domain.OrderDraft) (string, error) {
	now := m.now().UTC()
	order := &domain.Order{
		ID:              m.newID(),
		UserID:          draft.UserID,
		Status:          domain.OrderStatusPending,
		Items:           draft.Items,
		Total:           draft.Total,
		PaymentMethod:   draft.PaymentMethod,
		ShippingAddress: draft.ShippingAddress,
		Email:           draft.Email,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	m.mu.Lock()
	m.orders[order.ID] = order
	m.mu.Unlock()

	return order.ID, nil
}

func (m *Memory) GetOrder(_ context.Context, id string) (*domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	order, ok := m.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	found := *order
	return &found, nil
}

func (m *Memory) ListOrders(_ context.Context, userID string) ([]*domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := []*domain.Order{}
	for _, o := range m.orders {
		if o.UserID == userID {
			found := *o
			list = append(list, &found)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, nil
}
