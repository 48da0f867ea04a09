// Package session owns the per-visitor cart and checkout wizard.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/fjod/storefront/internal/cart"
	"github.com/fjod/storefront/internal/checkout"
	"github.com/fjod/storefront/internal/storage"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultIdleTTL = 30 * time.Minute

	// CleanupInterval is how often idle sessions are looked for.
	CleanupInterval = time.Minute

	hydrateTimeout = 3 * time.Second
)

type Session struct {
	ID       string
	Cart     *cart.Store
	Checkout *checkout.Flow

	lastSeen time.Time
}

type Config struct {
	Storage  storage.CartStorage
	Orders   checkout.OrderCreator
	Events   checkout.EventPublisher
	Checkout checkout.Options
	IdleTTL  time.Duration
	Logger   *zap.Logger
}

// Manager builds sessions on first use and evicts the idle ones. An evicted
// session's cart stays in storage and is rehydrated on the next visit.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	sfg      singleflight.Group

	cfg Config
	now func() time.Time

	stopCleanup chan struct{}
	closeOnce   sync.Once
	wg          sync.WaitGroup
}

func NewManager(cfg Config) *Manager {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultIdleTTL
	}
	m := &Manager{
		sessions:    make(map[string]*Session),
		cfg:         cfg,
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}

	m.wg.Add(1)
	go m.cleanupLoop()

	return m
}

// Get returns the session for id, building it exactly once even when several
// requests of a new visitor arrive together.
func (m *Manager) Get(ctx context.Context, id string) *Session {
	if s := m.lookup(id); s != nil {
		return s
	}

	v, _, _ := m.sfg.Do(id, func() (interface{}, error) {
		if s := m.lookup(id); s != nil {
			return s, nil
		}

		// detached so a cancelled first request cannot leave the cart empty
		hydrateCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), hydrateTimeout)
		defer cancel()

		store := cart.NewStore(hydrateCtx, id, m.cfg.Storage, m.cfg.Logger)
		s := &Session{
			ID:       id,
			Cart:     store,
			Checkout: checkout.NewFlow(store, m.cfg.Orders, m.cfg.Events, m.cfg.Checkout, m.cfg.Logger),
			lastSeen: m.now(),
		}

		m.mu.Lock()
		m.sessions[id] = s
		m.mu.Unlock()
		return s, nil
	})

	return v.(*Session)
}

func (m *Manager) lookup(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil
	}
	s.lastSeen = m.now()
	return s
}

// End tears the session down and closes its cart, which ends any open cart
// feed. Its persisted cart is left alone.
func (m *Manager) End(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		s.Cart.Close()
	}
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) cleanupLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.evictIdle()
		case <-m.stopCleanup:
			return
		}
	}
}

// evictIdle drops sessions not seen for IdleTTL. A session in the middle of
// submitting an order, or with a live cart feed, is kept.
func (m *Manager) evictIdle() {
	cutoff := m.now().Add(-m.cfg.IdleTTL)

	var evicted []*Session
	m.mu.Lock()
	for id, s := range m.sessions {
		if s.lastSeen.Before(cutoff) && s.Checkout.Step() != checkout.StepSubmitting && s.Cart.Subscribers() == 0 {
			delete(m.sessions, id)
			evicted = append(evicted, s)
		}
	}
	m.mu.Unlock()

	for _, s := range evicted {
		s.Cart.Close()
	}
	if len(evicted) > 0 {
		m.cfg.Logger.Debug("evicted idle sessions", zap.Int("count", len(evicted)))
	}
}

func (m *Manager) Close() error {
	m.closeOnce.Do(func() {
		close(m.stopCleanup)
	})
	m.wg.Wait()
	return nil
}
