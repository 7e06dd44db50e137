package moderation

import (
	"fmt"

	"github.com/heartmarshall/modqueue-backend/internal/consequence"
	"github.com/heartmarshall/modqueue-backend/internal/domain"
)

// approver is the kind-specific part of approving a row.
type approver interface {
	// consequence returns the pipeline call that publishes row.
	consequence(row domain.PendingChange) consequence.Consequence
	logSubtype() domain.LogSubtype
	logParams(row domain.PendingChange) map[string]any
	// logInBatch reports whether ApproveAll logs this row individually in
	// addition to the batch summary.
	logInBatch() bool
}

func approverFor(kind domain.Kind) (approver, error) {
	switch kind {
	case domain.KindEdit:
		return editApprover{}, nil
	case domain.KindMove:
		return moveApprover{}, nil
	case domain.KindUpload:
		return uploadApprover{}, nil
	}
	return nil, domain.NewValidationError("kind", fmt.Sprintf("unknown kind %q", kind))
}

func baseParams(row domain.PendingChange) map[string]any {
	return map[string]any{
		"modid":   row.ID,
		"user":    row.Author.Name,
		"user_id": row.Author.ID,
	}
}

type editApprover struct{}

func (editApprover) consequence(row domain.PendingChange) consequence.Consequence {
	return consequence.ApproveEdit{
		RowID:     row.ID,
		Target:    row.Target,
		Author:    row.Author,
		Text:      row.Text,
		Summary:   row.Comment,
		BaseRevID: row.BaseRevID,
		Minor:     row.Minor,
		Bot:       row.Bot,
	}
}

func (editApprover) logSubtype() domain.LogSubtype { return domain.LogApprove }

func (editApprover) logParams(row domain.PendingChange) map[string]any { return baseParams(row) }

func (editApprover) logInBatch() bool { return false }

type moveApprover struct{}

func (moveApprover) consequence(row domain.PendingChange) consequence.Consequence {
	return consequence.ApproveMove{
		RowID:         row.ID,
		From:          row.Target,
		To:            row.NewTarget,
		Author:        row.Author,
		Reason:        row.Comment,
		LeaveRedirect: true,
	}
}

func (moveApprover) logSubtype() domain.LogSubtype { return domain.LogApproveMove }

func (moveApprover) logParams(row domain.PendingChange) map[string]any {
	p := baseParams(row)
	p["target"] = row.NewTarget.String()
	return p
}

// Moves are logged one by one even in a batch.
func (moveApprover) logInBatch() bool { return true }

type uploadApprover struct{}

func (uploadApprover) consequence(row domain.PendingChange) consequence.Consequence {
	return consequence.ApproveUpload{
		RowID:    row.ID,
		Target:   row.Target,
		Author:   row.Author,
		StashKey: row.StashKey,
		Comment:  row.Comment,
		PageText: row.Text,
	}
}

func (uploadApprover) logSubtype() domain.LogSubtype { return domain.LogApprove }

func (uploadApprover) logParams(row domain.PendingChange) map[string]any { return baseParams(row) }

func (uploadApprover) logInBatch() bool { return false }
