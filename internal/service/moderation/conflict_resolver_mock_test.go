package moderation

import (
	"context"
	"sync"

	"github.com/heartmarshall/modqueue-backend/internal/domain"
	"github.com/heartmarshall/modqueue-backend/internal/merge"
)

var _ conflictResolver = &conflictResolverMock{}

type conflictResolverMock struct {
	ResolveFunc func(ctx context.Context, change domain.PendingChange) (merge.Resolution, error)

	calls struct {
		Resolve []struct {
			Ctx    context.Context
			Change domain.PendingChange
		}
	}
	lockResolve sync.RWMutex
}

func (mock *conflictResolverMock) Resolve(ctx context.Context, change domain.PendingChange) (merge.Resolution, error) {
	if mock.ResolveFunc == nil {
		panic("conflictResolverMock.ResolveFunc: method is nil but conflictResolver.Resolve was just called")
	}
	callInfo := struct {
		Ctx    context.Context
		Change domain.PendingChange
	}{Ctx: ctx, Change: change}
	mock.lockResolve.Lock()
	mock.calls.Resolve = append(mock.calls.Resolve, callInfo)
	mock.lockResolve.Unlock()
	return mock.ResolveFunc(ctx, change)
}

func (mock *conflictResolverMock) ResolveCalls() []struct {
	Ctx    context.Context
	Change domain.PendingChange
} {
	mock.lockResolve.RLock()
	calls := mock.calls.Resolve
	mock.lockResolve.RUnlock()
	return calls
}
