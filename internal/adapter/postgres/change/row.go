package change

import (
	"strings"
	"time"

	"github.com/heartmarshall/modqueue-backend/internal/domain"
)

type changeRow struct {
	ID                 int64      `db:"id"`
	SubmittedAt        time.Time  `db:"submitted_at"`
	UserID             int64      `db:"user_id"`
	UserText           string     `db:"user_text"`
	Namespace          int        `db:"namespace"`
	Title              string     `db:"title"`
	Namespace2         int        `db:"namespace2"`
	Title2             string     `db:"title2"`
	Kind               string     `db:"kind"`
	Comment            string     `db:"comment"`
	Minor              bool       `db:"minor"`
	Bot                bool       `db:"bot"`
	IsNew              bool       `db:"is_new"`
	LastOldID          int64      `db:"last_oldid"`
	IP                 string     `db:"ip"`
	XFF                string     `db:"xff"`
	UserAgent          string     `db:"user_agent"`
	Tags               []string   `db:"tags"`
	Body               string     `db:"body"`
	OldLen             int        `db:"old_len"`
	NewLen             int        `db:"new_len"`
	PreloadID          string     `db:"preload_id"`
	Rejected           bool       `db:"rejected"`
	RejectedByUser     int64      `db:"rejected_by_user"`
	RejectedByUserText string     `db:"rejected_by_user_text"`
	RejectedBatch      bool       `db:"rejected_batch"`
	RejectedAuto       bool       `db:"rejected_auto"`
	RejectedAt         *time.Time `db:"rejected_at"`
	MergedRevID        int64      `db:"merged_revid"`
	Conflict           bool       `db:"conflict"`
	StashKey           string     `db:"stash_key"`
}

func (r changeRow) toDomain() domain.PendingChange {
	author := domain.Author{ID: r.UserID, Name: r.UserText}
	if r.UserID == 0 {
		author.AnonToken = strings.TrimPrefix(r.PreloadID, "]")
	}

	c := domain.PendingChange{
		ID:        r.ID,
		Timestamp: r.SubmittedAt.UTC(),
		Kind:      domain.Kind(r.Kind),
		Target:    domain.Target{Namespace: r.Namespace, Title: r.Title},
		Author:    author,
		PreloadID: r.PreloadID,
		Comment:   r.Comment,
		Text:      r.Body,
		Minor:     r.Minor,
		Bot:       r.Bot,
		New:       r.IsNew,
		BaseRevID: r.LastOldID,
		OldLen:    r.OldLen,
		NewLen:    r.NewLen,
		StashKey:  r.StashKey,
		Tags:      r.Tags,
		Network:   domain.NetworkInfo{IP: r.IP, XFF: r.XFF, UserAgent: r.UserAgent},

		Rejected:      r.Rejected,
		RejectedAuto:  r.RejectedAuto,
		RejectedBatch: r.RejectedBatch,
		RejectedBy:    domain.Author{ID: r.RejectedByUser, Name: r.RejectedByUserText},
		MergedRevID:   r.MergedRevID,
		Conflict:      r.Conflict,
	}
	if r.Title2 != "" {
		c.NewTarget = domain.Target{Namespace: r.Namespace2, Title: r.Title2}
	}
	if r.RejectedAt != nil {
		at := r.RejectedAt.UTC()
		c.RejectedAt = &at
	}
	return c
}
