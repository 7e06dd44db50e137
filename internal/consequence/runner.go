package consequence

import (
	"context"
	"log/slog"
)

// Runner is the executing Manager.
type Runner struct {
	env Env
	log *slog.Logger
}

// NewRunner creates a Runner applying consequences against env.
func NewRunner(env Env, logger *slog.Logger) *Runner {
	return &Runner{env: env, log: logger.With("component", "consequence")}
}

// Add applies c immediately and returns its result and error unchanged.
func (r *Runner) Add(ctx context.Context, c Consequence) (any, error) {
	res, err := c.Apply(ctx, &r.env)
	if err != nil {
		r.log.DebugContext(ctx, "consequence failed",
			slog.String("consequence", c.Name()),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	r.log.DebugContext(ctx, "consequence applied", slog.String("consequence", c.Name()))
	return res, nil
}
