// Package moderation orchestrates the queue row lifecycle: submission,
// approval through the content pipeline with metadata fixup, rejection,
// manual merge and the spam block list.
//
// Every side effect goes through a consequence.Manager, so the decisions
// made here can be asserted as an ordered list of consequences.
package moderation

import (
	"context"
	"log/slog"
	"time"

	"github.com/heartmarshall/modqueue-backend/internal/consequence"
	"github.com/heartmarshall/modqueue-backend/internal/domain"
	"github.com/heartmarshall/modqueue-backend/internal/fixup"
	"github.com/heartmarshall/modqueue-backend/internal/merge"
	"github.com/heartmarshall/modqueue-backend/internal/pipeline"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type changeRepo interface {
	Get(ctx context.Context, id int64) (domain.PendingChange, error)
	List(ctx context.Context, folder domain.Folder, limit, offset int) ([]domain.PendingChange, error)
	ListPendingByPreloadID(ctx context.Context, preloadID string, limit int) ([]domain.PendingChange, error)
	Preload(ctx context.Context, preloadID string, target domain.Target) (domain.PendingChange, error)
}

type blockChecker interface {
	IsBlocked(ctx context.Context, address string) (bool, error)
}

type conflictResolver interface {
	Resolve(ctx context.Context, change domain.PendingChange) (merge.Resolution, error)
}

type pendingTimeReader interface {
	Get(ctx context.Context) (time.Time, bool, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Options tune moderation behavior.
type Options struct {
	// ApproveRejectedGrace is how long after submission a rejected change
	// may still be approved.
	ApproveRejectedGrace time.Duration
	DisableIPStorage     bool
	EnableEditChange     bool
	// ApproveAllLimit caps the rows one ApproveAll handles.
	ApproveAllLimit int
	// DefaultTags are attached to every approved record.
	DefaultTags []string
}

// Service provides moderation operations.
type Service struct {
	mgr      consequence.Manager
	changes  changeRepo
	blocks   blockChecker
	resolver conflictResolver
	hub      *pipeline.Hub
	fixups   fixup.Store
	tx       txManager
	pending  pendingTimeReader
	auth     Authorizer
	opts     Options
	log      *slog.Logger
	now      func() time.Time
}

// NewService creates a new moderation service.
func NewService(
	log *slog.Logger,
	mgr consequence.Manager,
	changes changeRepo,
	blocks blockChecker,
	resolver conflictResolver,
	hub *pipeline.Hub,
	fixups fixup.Store,
	tx txManager,
	pending pendingTimeReader,
	auth Authorizer,
	opts Options,
) *Service {
	if opts.ApproveAllLimit <= 0 {
		opts.ApproveAllLimit = DefaultApproveAllLimit
	}
	return &Service{
		mgr:      mgr,
		changes:  changes,
		blocks:   blocks,
		resolver: resolver,
		hub:      hub,
		fixups:   fixups,
		tx:       tx,
		pending:  pending,
		auth:     auth,
		opts:     opts,
		log:      log.With("service", "moderation"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

const (
	DefaultApproveAllLimit = 200
	DefaultListLimit       = 50
	MaxListLimit           = 500

	// userNamespace holds author pages; batch log entries point there.
	userNamespace = 2
)

// load returns the row or a not-found moderation error.
func (s *Service) load(ctx context.Context, id int64) (domain.PendingChange, error) {
	row, err := s.changes.Get(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return domain.PendingChange{}, domain.NewModerationError(domain.ErrNotFound, domain.MsgNotFound, id)
		}
		return domain.PendingChange{}, err
	}
	return row, nil
}

func (s *Service) invalidatePendingTime(ctx context.Context) error {
	_, err := s.mgr.Add(ctx, consequence.InvalidatePendingTime{})
	return err
}

func (s *Service) addLog(ctx context.Context, subtype domain.LogSubtype, moderator domain.Author, target domain.Target, params map[string]any) (int64, error) {
	return consequence.AddAs[int64](ctx, s.mgr, consequence.AddLogEntry{Entry: domain.LogEntry{
		Subtype:   subtype,
		Moderator: moderator,
		Target:    target,
		Params:    params,
		CreatedAt: s.now(),
	}})
}

func authorPage(name string) domain.Target {
	return domain.NewTarget(userNamespace, name)
}
