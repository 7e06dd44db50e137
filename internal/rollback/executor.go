// Package rollback runs units of work that must outlive a rollback of the
// transaction they were first performed in.
package rollback

import (
	"context"
	"log/slog"
	"sync"

	"github.com/heartmarshall/modqueue-backend/internal/adapter/postgres"
)

// TxHooks registers transaction outcome listeners. Both methods return ok
// false when ctx carries no open transaction.
type TxHooks interface {
	OnRollback(ctx context.Context, fn postgres.TxListener) (remove func(), ok bool)
	OnCommit(ctx context.Context, fn postgres.TxListener) (remove func(), ok bool)
}

// Executor performs work immediately and performs it again, once, if the
// surrounding transaction rolls back.
type Executor struct {
	hooks TxHooks
	log   *slog.Logger

	mu      sync.Mutex
	nextID  uint64
	pending map[uint64][]func()
}

// NewExecutor creates an Executor.
func NewExecutor(hooks TxHooks, logger *slog.Logger) *Executor {
	return &Executor{
		hooks:   hooks,
		log:     logger.With("component", "rollback"),
		pending: make(map[uint64][]func()),
	}
}

// Perform runs fn with ctx. When ctx carries a transaction, fn is registered
// to run again on a transaction-free context if that transaction rolls back;
// a commit discards the registration. Every registration re-runs
// independently. Errors from the re-run are logged.
func (e *Executor) Perform(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := fn(ctx); err != nil {
		return err
	}

	e.mu.Lock()
	e.nextID++
	id := e.nextID
	e.mu.Unlock()

	removeRollback, ok := e.hooks.OnRollback(ctx, func(clean context.Context) {
		if !e.forget(id) {
			return
		}
		if err := fn(clean); err != nil {
			e.log.ErrorContext(clean, "re-run after rollback failed", slog.String("error", err.Error()))
			return
		}
		e.log.InfoContext(clean, "re-ran work after rollback")
	})
	if !ok {
		return nil
	}
	removeCommit, _ := e.hooks.OnCommit(ctx, func(context.Context) {
		e.forget(id)
	})

	e.mu.Lock()
	e.pending[id] = []func(){removeRollback, removeCommit}
	e.mu.Unlock()

	return nil
}

// forget drops the registration and reports whether it was still live.
func (e *Executor) forget(id uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.pending[id]; !ok {
		return false
	}
	delete(e.pending, id)
	return true
}

// Pending returns the number of registrations waiting for a transaction outcome.
func (e *Executor) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pending)
}

// Close removes every listener this executor registered.
func (e *Executor) Close() {
	e.mu.Lock()
	pending := e.pending
	e.pending = make(map[uint64][]func())
	e.mu.Unlock()

	for _, removers := range pending {
		for _, remove := range removers {
			remove()
		}
	}
}
