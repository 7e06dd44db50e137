package moderation

import (
	"context"
	"sync"
)

var _ blockChecker = &blockCheckerMock{}

type blockCheckerMock struct {
	IsBlockedFunc func(ctx context.Context, address string) (bool, error)

	calls struct {
		IsBlocked []struct {
			Ctx     context.Context
			Address string
		}
	}
	lockIsBlocked sync.RWMutex
}

func (mock *blockCheckerMock) IsBlocked(ctx context.Context, address string) (bool, error) {
	if mock.IsBlockedFunc == nil {
		panic("blockCheckerMock.IsBlockedFunc: method is nil but blockChecker.IsBlocked was just called")
	}
	callInfo := struct {
		Ctx     context.Context
		Address string
	}{Ctx: ctx, Address: address}
	mock.lockIsBlocked.Lock()
	mock.calls.IsBlocked = append(mock.calls.IsBlocked, callInfo)
	mock.lockIsBlocked.Unlock()
	return mock.IsBlockedFunc(ctx, address)
}

func (mock *blockCheckerMock) IsBlockedCalls() []struct {
	Ctx     context.Context
	Address string
} {
	mock.lockIsBlocked.RLock()
	calls := mock.calls.IsBlocked
	mock.lockIsBlocked.RUnlock()
	return calls
}
