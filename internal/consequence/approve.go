package consequence

import (
	"context"
	"errors"

	"github.com/heartmarshall/modqueue-backend/internal/domain"
	"github.com/heartmarshall/modqueue-backend/internal/pipeline"
)

// ApproveEdit saves a pending edit through the content pipeline.
// Returns pipeline.Result.
type ApproveEdit struct {
	RowID     int64
	Target    domain.Target
	Author    domain.Author
	Text      string
	Summary   string
	BaseRevID int64
	Minor     bool
	Bot       bool
}

func (ApproveEdit) Name() string { return NameApproveEdit }

func (c ApproveEdit) Apply(ctx context.Context, env *Env) (any, error) {
	res, err := env.Pipeline.Save(ctx, pipeline.SaveRequest{
		Target:    c.Target,
		Author:    c.Author,
		Text:      c.Text,
		Summary:   c.Summary,
		BaseRevID: c.BaseRevID,
		Minor:     c.Minor,
		Bot:       c.Bot,
	})
	if err != nil {
		return nil, pipelineError("save", err)
	}
	return res, nil
}

// ApproveMove performs a pending rename through the content pipeline.
type ApproveMove struct {
	RowID         int64
	From          domain.Target
	To            domain.Target
	Author        domain.Author
	Reason        string
	LeaveRedirect bool
}

func (ApproveMove) Name() string { return NameApproveMove }

func (c ApproveMove) Apply(ctx context.Context, env *Env) (any, error) {
	res, err := env.Pipeline.Move(ctx, pipeline.MoveRequest{
		From:          c.From,
		To:            c.To,
		Author:        c.Author,
		Reason:        c.Reason,
		LeaveRedirect: c.LeaveRedirect,
	})
	if err != nil {
		return nil, pipelineError("move", err)
	}
	return res, nil
}

// ApproveUpload publishes a stashed upload through the content pipeline.
type ApproveUpload struct {
	RowID    int64
	Target   domain.Target
	Author   domain.Author
	StashKey string
	Comment  string
	PageText string
}

func (ApproveUpload) Name() string { return NameApproveUpload }

func (c ApproveUpload) Apply(ctx context.Context, env *Env) (any, error) {
	res, err := env.Pipeline.Upload(ctx, pipeline.UploadRequest{
		Target:   c.Target,
		Author:   c.Author,
		StashKey: c.StashKey,
		Comment:  c.Comment,
		PageText: c.PageText,
	})
	if err != nil {
		return nil, pipelineError("upload", err)
	}
	return res, nil
}

// pipelineError keeps conflicts and cancellations as they are and marks
// everything else as a pipeline failure.
func pipelineError(op string, err error) error {
	var pe *domain.PipelineError
	switch {
	case errors.Is(err, domain.ErrConflict),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &pe):
		return err
	}
	return &domain.PipelineError{Op: op, Err: err}
}
