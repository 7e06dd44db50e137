package postgres

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
)

// Beginner starts transactions. *pgxpool.Pool and pgxmock pools satisfy it.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// TxListener is called after a transaction finishes, with the context the
// transaction was started from.
type TxListener func(ctx context.Context)

type txListener struct {
	id uint64
	fn TxListener
}

// txState is the transaction carried in the context together with the
// listeners registered while it was open.
type txState struct {
	tx pgx.Tx

	mu         sync.Mutex
	nextID     uint64
	onRollback []txListener
	onCommit   []txListener
	done       bool
}

func (s *txState) add(list *[]txListener, fn TxListener) (func(), bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return func() {}, false
	}

	s.nextID++
	id := s.nextID
	*list = append(*list, txListener{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, l := range *list {
			if l.id == id {
				*list = append((*list)[:i:i], (*list)[i+1:]...)
				return
			}
		}
	}, true
}

// finish marks the transaction done and returns the listeners for the
// outcome. Listeners of the other outcome are dropped.
func (s *txState) finish(committed bool) []txListener {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.done = true
	out := s.onRollback
	if committed {
		out = s.onCommit
	}
	s.onRollback, s.onCommit = nil, nil
	return out
}

func fire(ctx context.Context, listeners []txListener) {
	for _, l := range listeners {
		l.fn(ctx)
	}
}

// TxManager manages database transactions using the context pattern.
// A RunInTx call inside a RunInTx callback joins the outer transaction.
type TxManager struct {
	db Beginner
}

// NewTxManager creates a new TxManager.
func NewTxManager(db Beginner) *TxManager {
	return &TxManager{db: db}
}

// RunInTx executes fn within a database transaction, or within the
// transaction ctx already carries.
// Isolation level: Read Committed (PostgreSQL default).
// On success: commits and runs commit listeners.
// On error from fn or a failed commit: rolls back and runs rollback listeners.
// On panic from fn: rolls back, runs rollback listeners and re-panics.
// Listeners receive ctx, which carries no transaction.
func (m *TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := txFromCtx(ctx); ok {
		return fn(ctx)
	}

	tx, err := m.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	st := &txState{tx: tx}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback(ctx)
			fire(ctx, st.finish(false))
			panic(r)
		}
	}()

	txCtx := withTx(ctx, st)

	if err := fn(txCtx); err != nil {
		rbErr := tx.Rollback(ctx)
		fire(ctx, st.finish(false))
		if rbErr != nil {
			return fmt.Errorf("rollback failed: %w (original error: %v)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		fire(ctx, st.finish(false))
		return fmt.Errorf("commit transaction: %w", err)
	}

	fire(ctx, st.finish(true))
	return nil
}

// OnRollback registers fn to run after the transaction in ctx rolls back.
// It returns a function removing the listener and false when ctx carries no
// open transaction.
func (m *TxManager) OnRollback(ctx context.Context, fn TxListener) (remove func(), ok bool) {
	st, ok := txFromCtx(ctx)
	if !ok {
		return func() {}, false
	}
	return st.add(&st.onRollback, fn)
}

// OnCommit registers fn to run after the transaction in ctx commits.
func (m *TxManager) OnCommit(ctx context.Context, fn TxListener) (remove func(), ok bool) {
	st, ok := txFromCtx(ctx)
	if !ok {
		return func() {}, false
	}
	return st.add(&st.onCommit, fn)
}
