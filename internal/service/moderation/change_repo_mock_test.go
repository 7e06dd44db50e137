package moderation

import (
	"context"
	"sync"

	"github.com/heartmarshall/modqueue-backend/internal/domain"
)

var _ changeRepo = &changeRepoMock{}

type changeRepoMock struct {
	GetFunc                    func(ctx context.Context, id int64) (domain.PendingChange, error)
	ListFunc                   func(ctx context.Context, folder domain.Folder, limit int, offset int) ([]domain.PendingChange, error)
	ListPendingByPreloadIDFunc func(ctx context.Context, preloadID string, limit int) ([]domain.PendingChange, error)
	PreloadFunc                func(ctx context.Context, preloadID string, target domain.Target) (domain.PendingChange, error)

	calls struct {
		Get []struct {
			Ctx context.Context
			ID  int64
		}
		List []struct {
			Ctx    context.Context
			Folder domain.Folder
			Limit  int
			Offset int
		}
		ListPendingByPreloadID []struct {
			Ctx       context.Context
			PreloadID string
			Limit     int
		}
		Preload []struct {
			Ctx       context.Context
			PreloadID string
			Target    domain.Target
		}
	}
	lockGet                    sync.RWMutex
	lockList                   sync.RWMutex
	lockListPendingByPreloadID sync.RWMutex
	lockPreload                sync.RWMutex
}

func (mock *changeRepoMock) Get(ctx context.Context, id int64) (domain.PendingChange, error) {
	if mock.GetFunc == nil {
		panic("changeRepoMock.GetFunc: method is nil but changeRepo.Get was just called")
	}
	callInfo := struct {
		Ctx context.Context
		ID  int64
	}{Ctx: ctx, ID: id}
	mock.lockGet.Lock()
	mock.calls.Get = append(mock.calls.Get, callInfo)
	mock.lockGet.Unlock()
	return mock.GetFunc(ctx, id)
}

func (mock *changeRepoMock) GetCalls() []struct {
	Ctx context.Context
	ID  int64
} {
	mock.lockGet.RLock()
	calls := mock.calls.Get
	mock.lockGet.RUnlock()
	return calls
}

func (mock *changeRepoMock) List(ctx context.Context, folder domain.Folder, limit int, offset int) ([]domain.PendingChange, error) {
	if mock.ListFunc == nil {
		panic("changeRepoMock.ListFunc: method is nil but changeRepo.List was just called")
	}
	callInfo := struct {
		Ctx    context.Context
		Folder domain.Folder
		Limit  int
		Offset int
	}{Ctx: ctx, Folder: folder, Limit: limit, Offset: offset}
	mock.lockList.Lock()
	mock.calls.List = append(mock.calls.List, callInfo)
	mock.lockList.Unlock()
	return mock.ListFunc(ctx, folder, limit, offset)
}

func (mock *changeRepoMock) ListCalls() []struct {
	Ctx    context.Context
	Folder domain.Folder
	Limit  int
	Offset int
} {
	mock.lockList.RLock()
	calls := mock.calls.List
	mock.lockList.RUnlock()
	return calls
}

func (mock *changeRepoMock) ListPendingByPreloadID(ctx context.Context, preloadID string, limit int) ([]domain.PendingChange, error) {
	if mock.ListPendingByPreloadIDFunc == nil {
		panic("changeRepoMock.ListPendingByPreloadIDFunc: method is nil but changeRepo.ListPendingByPreloadID was just called")
	}
	callInfo := struct {
		Ctx       context.Context
		PreloadID string
		Limit     int
	}{Ctx: ctx, PreloadID: preloadID, Limit: limit}
	mock.lockListPendingByPreloadID.Lock()
	mock.calls.ListPendingByPreloadID = append(mock.calls.ListPendingByPreloadID, callInfo)
	mock.lockListPendingByPreloadID.Unlock()
	return mock.ListPendingByPreloadIDFunc(ctx, preloadID, limit)
}

func (mock *changeRepoMock) ListPendingByPreloadIDCalls() []struct {
	Ctx       context.Context
	PreloadID string
	Limit     int
} {
	mock.lockListPendingByPreloadID.RLock()
	calls := mock.calls.ListPendingByPreloadID
	mock.lockListPendingByPreloadID.RUnlock()
	return calls
}

func (mock *changeRepoMock) Preload(ctx context.Context, preloadID string, target domain.Target) (domain.PendingChange, error) {
	if mock.PreloadFunc == nil {
		panic("changeRepoMock.PreloadFunc: method is nil but changeRepo.Preload was just called")
	}
	callInfo := struct {
		Ctx       context.Context
		PreloadID string
		Target    domain.Target
	}{Ctx: ctx, PreloadID: preloadID, Target: target}
	mock.lockPreload.Lock()
	mock.calls.Preload = append(mock.calls.Preload, callInfo)
	mock.lockPreload.Unlock()
	return mock.PreloadFunc(ctx, preloadID, target)
}

func (mock *changeRepoMock) PreloadCalls() []struct {
	Ctx       context.Context
	PreloadID string
	Target    domain.Target
} {
	mock.lockPreload.RLock()
	calls := mock.calls.Preload
	mock.lockPreload.RUnlock()
	return calls
}
