package moderation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/modqueue-backend/internal/fixup"
	"github.com/heartmarshall/modqueue-backend/internal/pipeline"
)

// session is the request-scoped state of one Approve or ApproveAll call:
// a fresh fixup hook subscribed to the completion hub and a scope for
// deferred completions.
type session struct {
	hook        *fixup.Hook
	scope       *pipeline.Scope
	unsubscribe func()
}

func (s *Service) beginSession(ctx context.Context) (context.Context, *session) {
	hook := fixup.NewHook(s.fixups, fixup.Options{DisableIPStorage: s.opts.DisableIPStorage}, s.log)
	ctx, scope := s.hub.BeginScope(ctx)
	return ctx, &session{
		hook:        hook,
		scope:       scope,
		unsubscribe: s.hub.Subscribe(hook.OnCompletion),
	}
}

// finish delivers deferred completions and writes the corrections in one
// transaction.
func (s *Service) finishSession(ctx context.Context, sess *session) error {
	delivered := sess.scope.RunDeferred(ctx)

	var report fixup.Report
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		report, err = sess.hook.Flush(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("apply approval fixups: %w", err)
	}

	if len(report.IgnoredTimestamps) > 0 {
		s.log.InfoContext(ctx, "kept newer history timestamps",
			slog.Any("revisions", report.IgnoredTimestamps),
		)
	}
	s.log.DebugContext(ctx, "approval session finished",
		slog.Int("deferred", delivered),
		slog.Int("tasks", report.Tasks),
		slog.Int("records", report.Records),
	)
	return nil
}

// close unsubscribes the hook and drops unmatched tasks.
func (sess *session) close() {
	sess.unsubscribe()
	sess.hook.Close()
}
