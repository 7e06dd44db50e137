package consequence

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/modqueue-backend/internal/domain"
	"github.com/heartmarshall/modqueue-backend/internal/pipeline"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunner_InsertRowUsesExecutor(t *testing.T) {
	t.Parallel()

	perf := &directPerformer{}
	var upserted domain.PendingChange
	runner := NewRunner(Env{
		Executor: perf,
		Rows: &rowStoreMock{
			UpsertFunc: func(_ context.Context, c domain.PendingChange) (int64, error) {
				upserted = c
				return 42, nil
			},
		},
	}, discardLogger())

	change := domain.PendingChange{Target: domain.NewTarget(0, "Page"), Kind: domain.KindEdit}
	id, err := AddAs[int64](context.Background(), runner, InsertRow{Change: change})

	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, 1, perf.calls)
	assert.Equal(t, change, upserted)
}

func TestRunner_PropagatesErrorUnchanged(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("boom")
	runner := NewRunner(Env{
		Rows: &rowStoreMock{
			MarkConflictFunc: func(context.Context, int64) error { return sentinel },
		},
	}, discardLogger())

	res, err := runner.Add(context.Background(), MarkAsConflict{ID: 3})
	assert.Nil(t, res)
	assert.Same(t, sentinel, err)
}

func TestRunner_ExecutesInOrder(t *testing.T) {
	t.Parallel()

	var order []string
	cache := &cacheMock{}
	runner := NewRunner(Env{
		Cache: cache,
		Audit: &auditMock{
			CreateFunc: func(_ context.Context, e domain.LogEntry) (int64, error) {
				order = append(order, "log:"+string(e.Subtype))
				return 9, nil
			},
		},
		Rows: &rowStoreMock{
			DeleteFunc: func(_ context.Context, ids []int64) (int64, error) {
				order = append(order, "delete")
				return int64(len(ids)), nil
			},
		},
	}, discardLogger())

	ctx := context.Background()
	logID, err := AddAs[int64](ctx, runner, AddLogEntry{Entry: domain.LogEntry{Subtype: domain.LogApprove}})
	require.NoError(t, err)
	deleted, err := AddAs[int64](ctx, runner, DeleteRows{IDs: []int64{1, 2}})
	require.NoError(t, err)
	_, err = runner.Add(ctx, InvalidatePendingTime{})
	require.NoError(t, err)

	assert.Equal(t, int64(9), logID)
	assert.Equal(t, int64(2), deleted)
	assert.Equal(t, []string{"log:approve", "delete"}, order)
	assert.Equal(t, 1, cache.calls)
}

func TestApproveEdit_Apply(t *testing.T) {
	t.Parallel()

	target := domain.NewTarget(0, "Page")
	author := domain.Author{ID: 5, Name: "Alice"}

	tests := []struct {
		name     string
		saveErr  error
		wantErr  error
		pipeline bool
	}{
		{name: "success"},
		{name: "conflict passes through", saveErr: fmt.Errorf("save: %w", domain.ErrConflict), wantErr: domain.ErrConflict},
		{name: "other failure is a pipeline error", saveErr: errors.New("spam filter"), wantErr: domain.ErrPipeline, pipeline: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got pipeline.SaveRequest
			runner := NewRunner(Env{Pipeline: &pipelineMock{
				SaveFunc: func(_ context.Context, req pipeline.SaveRequest) (pipeline.Result, error) {
					got = req
					if tt.saveErr != nil {
						return pipeline.Result{}, tt.saveErr
					}
					return pipeline.Result{Status: domain.SaveStatusSaved, RevisionID: 77}, nil
				},
			}}, discardLogger())

			res, err := AddAs[pipeline.Result](context.Background(), runner, ApproveEdit{
				RowID: 1, Target: target, Author: author, Text: "text", Summary: "sum", BaseRevID: 3, Minor: true,
			})

			assert.Equal(t, pipeline.SaveRequest{
				Target: target, Author: author, Text: "text", Summary: "sum", BaseRevID: 3, Minor: true,
			}, got)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				var pe *domain.PipelineError
				assert.Equal(t, tt.pipeline, errors.As(err, &pe))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(77), res.RevisionID)
		})
	}
}

func TestRejectOne_Apply(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	mod := domain.Author{ID: 1, Name: "Mod"}

	runner := NewRunner(Env{Rows: &rowStoreMock{
		RejectFunc: func(_ context.Context, id int64, moderator domain.Author, ts time.Time) (int64, error) {
			assert.Equal(t, int64(8), id)
			assert.Equal(t, mod, moderator)
			assert.Equal(t, at, ts)
			return 0, nil
		},
	}}, discardLogger())

	affected, err := AddAs[int64](context.Background(), runner, RejectOne{ID: 8, Moderator: mod, At: at})
	require.NoError(t, err)
	assert.Zero(t, affected)
}

func TestAddAs_WrongType(t *testing.T) {
	t.Parallel()

	m := NewMockManager().Program(NameDeleteRows, "not a count", nil)

	_, err := AddAs[int64](context.Background(), m, DeleteRows{IDs: []int64{1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), NameDeleteRows)
}

func TestLockRow_Apply(t *testing.T) {
	t.Parallel()

	gone := fmt.Errorf("change 3: %w", domain.ErrNotFound)
	runner := NewRunner(Env{Rows: &rowStoreMock{
		LockFunc: func(_ context.Context, id int64) error {
			if id == 3 {
				return gone
			}
			return nil
		},
	}}, discardLogger())

	_, err := runner.Add(context.Background(), LockRow{ID: 2})
	require.NoError(t, err)

	_, err = runner.Add(context.Background(), LockRow{ID: 3})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
