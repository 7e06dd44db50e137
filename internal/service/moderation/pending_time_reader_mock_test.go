package moderation

import (
	"context"
	"sync"
	"time"
)

var _ pendingTimeReader = &pendingTimeReaderMock{}

type pendingTimeReaderMock struct {
	GetFunc func(ctx context.Context) (time.Time, bool, error)

	calls struct {
		Get []struct {
			Ctx context.Context
		}
	}
	lockGet sync.RWMutex
}

func (mock *pendingTimeReaderMock) Get(ctx context.Context) (time.Time, bool, error) {
	if mock.GetFunc == nil {
		panic("pendingTimeReaderMock.GetFunc: method is nil but pendingTimeReader.Get was just called")
	}
	callInfo := struct{ Ctx context.Context }{Ctx: ctx}
	mock.lockGet.Lock()
	mock.calls.Get = append(mock.calls.Get, callInfo)
	mock.lockGet.Unlock()
	return mock.GetFunc(ctx)
}

func (mock *pendingTimeReaderMock) GetCalls() []struct{ Ctx context.Context } {
	mock.lockGet.RLock()
	calls := mock.calls.Get
	mock.lockGet.RUnlock()
	return calls
}
