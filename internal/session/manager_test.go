package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fjod/storefront/internal/cart"
	"github.com/fjod/storefront/internal/checkout"
	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/orders"
	"github.com/fjod/storefront/internal/publisher"
	"github.com/fjod/storefront/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingStorage struct {
	*storage.MemoryStorage
	mu    sync.Mutex
	loads int
}

func (c *countingStorage) Load(ctx context.Context, key string) (*domain.CartState, error) {
	c.mu.Lock()
	c.loads++
	c.mu.Unlock()
	time.Sleep(5 * time.Millisecond)
	return c.MemoryStorage.Load(ctx, key)
}

func newTestManager(t *testing.T, cartStorage storage.CartStorage) *Manager {
	t.Helper()
	m := NewManager(Config{
		Storage:  cartStorage,
		Orders:   orders.NewMemory(nil),
		Events:   publisher.Nop{},
		Checkout: checkout.DefaultOptions(),
		IdleTTL:  time.Minute,
		Logger:   zap.NewNop(),
	})
	t.Cleanup(func() { m.Close() })
	return m
}

var lamp = domain.Product{ID: "3", Name: "Modern Desk Lamp", Price: 89.99}

func TestGet_ReturnsSameSession(t *testing.T) {
	m := newTestManager(t, storage.NewMemoryStorage())
	ctx := context.Background()

	a := m.Get(ctx, "sid-1")
	b := m.Get(ctx, "sid-1")
	c := m.Get(ctx, "sid-2")

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, 2, m.Len())
}

func TestGet_HydratesOnceUnderConcurrency(t *testing.T) {
	cs := &countingStorage{MemoryStorage: storage.NewMemoryStorage()}
	m := newTestManager(t, cs)

	var wg sync.WaitGroup
	got := make([]*Session, 20)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = m.Get(context.Background(), "sid-1")
		}(i)
	}
	wg.Wait()

	for _, s := range got {
		assert.Same(t, got[0], s)
	}
	assert.Equal(t, 1, cs.loads)
}

func TestGet_CheckoutDrivesTheSessionCart(t *testing.T) {
	m := newTestManager(t, storage.NewMemoryStorage())
	s := m.Get(context.Background(), "sid-1")

	s.Cart.AddItem(context.Background(), lamp)

	require.NoError(t, s.Checkout.SetShipping(domain.ShippingDetails{
		FirstName: "A", LastName: "B", Email: "a@b.c", Address: "1 St", City: "C", State: "S", ZipCode: "1",
	}))
	_, err := s.Checkout.Next()
	require.NoError(t, err)
	require.NoError(t, s.Checkout.SetPayment(domain.PaymentDetails{PaymentMethod: domain.PaymentPayPal}))
	_, err = s.Checkout.Next()
	require.NoError(t, err)

	conf, err := s.Checkout.Submit(context.Background(), "user-1")
	require.NoError(t, err)
	assert.NotEmpty(t, conf.OrderID)
	assert.True(t, s.Cart.State().IsEmpty())
}

func TestEnd_KeepsPersistedCart(t *testing.T) {
	mem := storage.NewMemoryStorage()
	m := newTestManager(t, mem)
	ctx := context.Background()

	first := m.Get(ctx, "sid-1")
	first.Cart.AddItem(ctx, lamp)
	m.End("sid-1")
	assert.Equal(t, 0, m.Len())

	second := m.Get(ctx, "sid-1")
	assert.NotSame(t, first, second)
	require.Len(t, second.Cart.State().Items, 1)
}

func TestEvictIdle(t *testing.T) {
	m := newTestManager(t, storage.NewMemoryStorage())
	ctx := context.Background()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	m.Get(ctx, "old")
	now = now.Add(50 * time.Second)
	m.Get(ctx, "fresh")
	now = now.Add(20 * time.Second)

	m.evictIdle()

	assert.Equal(t, 1, m.Len())
	assert.NotNil(t, m.lookup("fresh"))
	assert.Nil(t, m.lookup("old"))
}

func TestEvictIdle_KeepsSessionsWithCartFeed(t *testing.T) {
	m := newTestManager(t, storage.NewMemoryStorage())
	ctx := context.Background()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	watched := m.Get(ctx, "watched")
	unsubscribe := watched.Cart.Subscribe(func(cart.Change) {})
	m.Get(ctx, "idle")
	now = now.Add(2 * time.Minute)

	m.evictIdle()

	assert.Equal(t, 1, m.Len())
	assert.Same(t, watched, m.lookup("watched"))

	unsubscribe()
	now = now.Add(2 * time.Minute)
	m.evictIdle()
	assert.Equal(t, 0, m.Len())
	select {
	case <-watched.Cart.Done():
	default:
		t.Fatal("evicted cart not closed")
	}
}

func TestEnd_ClosesCart(t *testing.T) {
	m := newTestManager(t, storage.NewMemoryStorage())

	s := m.Get(context.Background(), "sid-1")
	s.Cart.Subscribe(func(cart.Change) {})
	m.End("sid-1")

	select {
	case <-s.Cart.Done():
	default:
		t.Fatal("ended cart not closed")
	}
	assert.Zero(t, s.Cart.Subscribers())
}

func TestClose_IsIdempotent(t *testing.T) {
	m := newTestManager(t, storage.NewMemoryStorage())
	assert.NoError(t, m.Close())
	assert.NoError(t, m.Close())
}
