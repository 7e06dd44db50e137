package consequence

import (
	"context"
	"time"

	"github.com/heartmarshall/modqueue-backend/internal/domain"
	"github.com/heartmarshall/modqueue-backend/internal/pipeline"
)

type rowStoreMock struct {
	UpsertFunc       func(ctx context.Context, c domain.PendingChange) (int64, error)
	LockFunc         func(ctx context.Context, id int64) error
	ModifyFunc       func(ctx context.Context, id int64, text, comment string, newLen int) error
	DeleteFunc       func(ctx context.Context, ids []int64) (int64, error)
	RejectFunc       func(ctx context.Context, id int64, moderator domain.Author, at time.Time) (int64, error)
	RejectAllFunc    func(ctx context.Context, preloadID string, moderator domain.Author, at time.Time) (int64, error)
	MarkConflictFunc func(ctx context.Context, id int64) error
	MarkMergedFunc   func(ctx context.Context, id, revID int64) (int64, error)
	ReassignFunc     func(ctx context.Context, fromPreloadID string, to domain.Author) (int64, error)
}

func (m *rowStoreMock) Upsert(ctx context.Context, c domain.PendingChange) (int64, error) {
	return m.UpsertFunc(ctx, c)
}

func (m *rowStoreMock) Lock(ctx context.Context, id int64) error {
	return m.LockFunc(ctx, id)
}

func (m *rowStoreMock) Modify(ctx context.Context, id int64, text, comment string, newLen int) error {
	return m.ModifyFunc(ctx, id, text, comment, newLen)
}

func (m *rowStoreMock) Delete(ctx context.Context, ids []int64) (int64, error) {
	return m.DeleteFunc(ctx, ids)
}

func (m *rowStoreMock) Reject(ctx context.Context, id int64, moderator domain.Author, at time.Time) (int64, error) {
	return m.RejectFunc(ctx, id, moderator, at)
}

func (m *rowStoreMock) RejectAll(ctx context.Context, preloadID string, moderator domain.Author, at time.Time) (int64, error) {
	return m.RejectAllFunc(ctx, preloadID, moderator, at)
}

func (m *rowStoreMock) MarkConflict(ctx context.Context, id int64) error {
	return m.MarkConflictFunc(ctx, id)
}

func (m *rowStoreMock) MarkMerged(ctx context.Context, id, revID int64) (int64, error) {
	return m.MarkMergedFunc(ctx, id, revID)
}

func (m *rowStoreMock) Reassign(ctx context.Context, fromPreloadID string, to domain.Author) (int64, error) {
	return m.ReassignFunc(ctx, fromPreloadID, to)
}

type pipelineMock struct {
	SaveFunc   func(ctx context.Context, req pipeline.SaveRequest) (pipeline.Result, error)
	MoveFunc   func(ctx context.Context, req pipeline.MoveRequest) (pipeline.Result, error)
	UploadFunc func(ctx context.Context, req pipeline.UploadRequest) (pipeline.Result, error)
}

func (m *pipelineMock) Save(ctx context.Context, req pipeline.SaveRequest) (pipeline.Result, error) {
	return m.SaveFunc(ctx, req)
}

func (m *pipelineMock) Move(ctx context.Context, req pipeline.MoveRequest) (pipeline.Result, error) {
	return m.MoveFunc(ctx, req)
}

func (m *pipelineMock) Upload(ctx context.Context, req pipeline.UploadRequest) (pipeline.Result, error) {
	return m.UploadFunc(ctx, req)
}

type auditMock struct {
	CreateFunc func(ctx context.Context, e domain.LogEntry) (int64, error)
}

func (m *auditMock) Create(ctx context.Context, e domain.LogEntry) (int64, error) {
	return m.CreateFunc(ctx, e)
}

type cacheMock struct {
	calls int
}

func (m *cacheMock) Invalidate() { m.calls++ }

// directPerformer runs work once with no rollback protection.
type directPerformer struct {
	calls int
}

func (p *directPerformer) Perform(ctx context.Context, fn func(ctx context.Context) error) error {
	p.calls++
	return fn(ctx)
}
