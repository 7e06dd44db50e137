package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/modqueue-backend/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// UniqueTarget returns a main-namespace target that no other test uses.
func UniqueTarget(prefix string) domain.Target {
	return domain.NewTarget(0, prefix+"_"+uniqueSuffix())
}

// SeedPage creates a page with one revision holding text, written by "Seeder"
// at ts. Returns the page id and the revision id.
func SeedPage(t *testing.T, pool *pgxpool.Pool, target domain.Target, text string, ts time.Time) (int64, int64) {
	t.Helper()
	ctx := context.Background()

	var pageID int64
	err := pool.QueryRow(ctx,
		`INSERT INTO pages (namespace, title) VALUES ($1, $2) RETURNING id`,
		target.Namespace, target.Title,
	).Scan(&pageID)
	if err != nil {
		t.Fatalf("testhelper: SeedPage insert page: %v", err)
	}

	revID := SeedRevision(t, pool, pageID, "Seeder", text, ts)
	return pageID, revID
}

// SeedRevision appends a revision to a page and makes it the latest one.
func SeedRevision(t *testing.T, pool *pgxpool.Pool, pageID int64, userText, text string, ts time.Time) int64 {
	t.Helper()
	ctx := context.Background()

	var parent int64
	if err := pool.QueryRow(ctx, `SELECT latest_rev FROM pages WHERE id = $1`, pageID).Scan(&parent); err != nil {
		t.Fatalf("testhelper: SeedRevision read page: %v", err)
	}

	var revID int64
	err := pool.QueryRow(ctx,
		`INSERT INTO revisions (page_id, parent_id, user_text, body, created_at)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		pageID, parent, userText, text, ts.UTC(),
	).Scan(&revID)
	if err != nil {
		t.Fatalf("testhelper: SeedRevision insert: %v", err)
	}

	if _, err := pool.Exec(ctx, `UPDATE pages SET latest_rev = $1 WHERE id = $2`, revID, pageID); err != nil {
		t.Fatalf("testhelper: SeedRevision update page: %v", err)
	}
	return revID
}

// BuildChange returns a valid pending edit by a registered author on target.
func BuildChange(t *testing.T, target domain.Target, authorName, text string, baseRevID int64) domain.PendingChange {
	t.Helper()

	change, err := domain.NewChange(domain.KindEdit, target, domain.Author{ID: 7, Name: authorName}).
		WithText(text).
		WithComment("test edit").
		WithBase(baseRevID, 0).
		WithNetwork(domain.NetworkInfo{IP: "192.0.2.10", XFF: "198.51.100.1", UserAgent: "TestAgent/1.0"}).
		WithTags("test-tag").
		WithTimestamp(time.Now().UTC().Add(-time.Hour).Truncate(time.Microsecond)).
		Build()
	if err != nil {
		t.Fatalf("testhelper: BuildChange: %v", err)
	}
	return change
}

// CountRows returns the number of queue rows matching kind, target and author.
func CountRows(t *testing.T, pool *pgxpool.Pool, kind domain.Kind, target domain.Target, authorName string) int {
	t.Helper()

	var n int
	err := pool.QueryRow(context.Background(),
		`SELECT count(*) FROM moderation
		 WHERE kind = $1 AND namespace = $2 AND title = $3 AND user_text = $4`,
		string(kind), target.Namespace, target.Title, authorName,
	).Scan(&n)
	if err != nil {
		t.Fatalf("testhelper: CountRows: %v", err)
	}
	return n
}
