package pipeline

import (
	"context"
	"sync"

	"github.com/heartmarshall/modqueue-backend/internal/domain"
)

// Listener receives completion records. It is called synchronously on the
// goroutine that notified.
type Listener func(ctx context.Context, c domain.Completion)

type subscription struct {
	id uint64
	fn Listener
}

// Hub fans completion records out to subscribers. Subscriptions are
// explicit and short-lived: an approval subscribes, performs its saves and
// unsubscribes, so no listener outlives the request that registered it.
type Hub struct {
	clock *Clock

	mu     sync.RWMutex
	subs   []subscription
	nextID uint64
}

// NewHub creates a hub stamping completions with clock.
func NewHub(clock *Clock) *Hub {
	if clock == nil {
		clock = NewClock()
	}
	return &Hub{clock: clock}
}

// Subscribe registers l and returns a function that removes it.
// The returned function is idempotent.
func (h *Hub) Subscribe(l Listener) (unsubscribe func()) {
	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.subs = append(h.subs, subscription{id: id, fn: l})
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			for i, s := range h.subs {
				if s.id == id {
					h.subs = append(h.subs[:i:i], h.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Subscribers returns the number of active subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Notify stamps c with the next sequence number and delivers it to every
// subscriber in subscription order.
func (h *Hub) Notify(ctx context.Context, c domain.Completion) {
	c.Seq = h.clock.Next()
	h.deliver(ctx, c)
}

// NotifyDeferred stamps c now and delivers it when the request scope in ctx
// runs its deferred phase. Without a scope it behaves like Notify.
func (h *Hub) NotifyDeferred(ctx context.Context, c domain.Completion) {
	c.Seq = h.clock.Next()
	if s, ok := ctx.Value(scopeKey{}).(*Scope); ok && s.hub == h {
		s.push(c)
		return
	}
	h.deliver(ctx, c)
}

func (h *Hub) deliver(ctx context.Context, c domain.Completion) {
	h.mu.RLock()
	subs := make([]subscription, len(h.subs))
	copy(subs, h.subs)
	h.mu.RUnlock()

	for _, s := range subs {
		s.fn(ctx, c)
	}
}

type scopeKey struct{}

// Scope collects deferred completions of one request.
type Scope struct {
	hub *Hub

	mu      sync.Mutex
	pending []domain.Completion
}

// BeginScope returns a context carrying a new request scope.
func (h *Hub) BeginScope(ctx context.Context) (context.Context, *Scope) {
	s := &Scope{hub: h}
	return context.WithValue(ctx, scopeKey{}, s), s
}

func (s *Scope) push(c domain.Completion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, c)
}

// RunDeferred delivers queued completions in sequence order, including
// completions queued by listeners while running. Returns how many were
// delivered.
func (s *Scope) RunDeferred(ctx context.Context) int {
	delivered := 0
	for {
		s.mu.Lock()
		if len(s.pending) == 0 {
			s.mu.Unlock()
			return delivered
		}
		batch := s.pending
		s.pending = nil
		s.mu.Unlock()

		for _, c := range batch {
			s.hub.deliver(ctx, c)
			delivered++
		}
	}
}

// Pending returns the number of completions waiting for RunDeferred.
func (s *Scope) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
