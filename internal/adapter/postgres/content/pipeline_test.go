package content_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	postgres "github.com/heartmarshall/modqueue-backend/internal/adapter/postgres"
	"github.com/heartmarshall/modqueue-backend/internal/adapter/postgres/content"
	"github.com/heartmarshall/modqueue-backend/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/modqueue-backend/internal/domain"
	"github.com/heartmarshall/modqueue-backend/internal/fixup"
	"github.com/heartmarshall/modqueue-backend/internal/pipeline"
	"github.com/heartmarshall/modqueue-backend/pkg/ctxutil"
)

var moderatorClient = ctxutil.Client{IP: "203.0.113.99", UserAgent: "ModeratorBrowser/2.0"}

func newPipeline(t *testing.T, opts content.Options) (*content.Pipeline, *pipeline.Hub, *pgxpool.Pool) {
	t.Helper()
	pool := testhelper.SetupTestDB(t)
	hub := pipeline.NewHub(nil)
	return content.NewPipeline(pool, postgres.NewTxManager(pool), hub, opts), hub, pool
}

func collect(hub *pipeline.Hub) (*[]domain.Completion, func()) {
	var got []domain.Completion
	unsub := hub.Subscribe(func(_ context.Context, c domain.Completion) {
		got = append(got, c)
	})
	return &got, unsub
}

func TestPipeline_SaveCreatesPageAndNotifies(t *testing.T) {
	p, hub, pool := newPipeline(t, content.Options{})
	got, unsub := collect(hub)
	defer unsub()

	target := testhelper.UniqueTarget("Save")
	author := domain.Author{ID: 7, Name: "Alice"}
	ctx := ctxutil.WithClient(context.Background(), moderatorClient)

	res, err := p.Save(ctx, pipeline.SaveRequest{Target: target, Author: author, Text: "hello", Summary: "new"})
	require.NoError(t, err)
	assert.Equal(t, domain.SaveStatusSaved, res.Status)
	require.Len(t, *got, 1)
	assert.Equal(t, res.RevisionID, (*got)[0].RevisionID)
	assert.Equal(t, domain.RecordKey{Target: target, AuthorName: "Alice", Kind: domain.KindEdit}, (*got)[0].Key())

	var ip, agent string
	err = pool.QueryRow(context.Background(),
		`SELECT rc.ip, cu.agent FROM recent_changes rc JOIN cu_changes cu ON cu.rc_id = rc.id WHERE rc.rev_id = $1`,
		res.RevisionID,
	).Scan(&ip, &agent)
	require.NoError(t, err)
	assert.Equal(t, moderatorClient.IP, ip)
	assert.Equal(t, moderatorClient.UserAgent, agent)
}

func TestPipeline_SaveConflictAndNoChange(t *testing.T) {
	p, _, pool := newPipeline(t, content.Options{})
	ctx := context.Background()

	target := testhelper.UniqueTarget("Conflict")
	_, base := testhelper.SeedPage(t, pool, target, "one", time.Now().Add(-time.Hour))
	author := domain.Author{ID: 7, Name: "Alice"}

	res, err := p.Save(ctx, pipeline.SaveRequest{Target: target, Author: author, Text: "one", BaseRevID: base})
	require.NoError(t, err)
	assert.Equal(t, domain.SaveStatusNoChange, res.Status)

	_, err = p.Save(ctx, pipeline.SaveRequest{Target: target, Author: author, Text: "two", BaseRevID: base - 1})
	assert.True(t, errors.Is(err, domain.ErrConflict), "got %v", err)

	_, err = p.Save(ctx, pipeline.SaveRequest{Target: target, Author: author, Text: "two"})
	assert.True(t, errors.Is(err, domain.ErrConflict), "creation over an existing page, got %v", err)
}

func TestPipeline_DeferredCompletionsWaitForScope(t *testing.T) {
	p, hub, _ := newPipeline(t, content.Options{DeferCompletions: true})
	got, unsub := collect(hub)
	defer unsub()

	ctx, scope := hub.BeginScope(context.Background())
	_, err := p.Save(ctx, pipeline.SaveRequest{
		Target: testhelper.UniqueTarget("Deferred"),
		Author: domain.Author{ID: 7, Name: "Alice"},
		Text:   "x",
	})
	require.NoError(t, err)
	assert.Empty(t, *got)

	assert.Equal(t, 1, scope.RunDeferred(ctx))
	assert.Len(t, *got, 1)
}

func TestPipeline_MoveWithRedirect(t *testing.T) {
	p, hub, pool := newPipeline(t, content.Options{})
	got, unsub := collect(hub)
	defer unsub()

	from := testhelper.UniqueTarget("From")
	to := testhelper.UniqueTarget("To")
	testhelper.SeedPage(t, pool, from, "body", time.Now().Add(-time.Hour))

	res, err := p.Move(context.Background(), pipeline.MoveRequest{
		From: from, To: to, Author: domain.Author{ID: 7, Name: "Alice"}, Reason: "rename", LeaveRedirect: true,
	})
	require.NoError(t, err)
	require.Len(t, *got, 2)
	assert.Equal(t, res.RevisionID, (*got)[0].RevisionID)
	assert.NotZero(t, (*got)[0].LogID)
	assert.Zero(t, (*got)[1].LogID)
	for _, c := range *got {
		assert.Equal(t, domain.KindMove, c.Kind)
		assert.Equal(t, from, c.Target)
	}

	reader := content.NewReader(pool)
	cur, err := reader.CurrentRevision(context.Background(), to)
	require.NoError(t, err)
	assert.Equal(t, "body", cur.Text)

	redirect, err := reader.CurrentRevision(context.Background(), from)
	require.NoError(t, err)
	assert.Equal(t, "#REDIRECT [["+to.Title+"]]", redirect.Text)
}

func TestPipeline_UploadRequiresStashKey(t *testing.T) {
	p, _, _ := newPipeline(t, content.Options{})
	_, err := p.Upload(context.Background(), pipeline.UploadRequest{
		Target: testhelper.UniqueTarget("File"),
		Author: domain.Author{ID: 7, Name: "Alice"},
	})
	require.Error(t, err)
}

func TestReader_CurrentRevisionNotFound(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	_, err := content.NewReader(pool).CurrentRevision(context.Background(), testhelper.UniqueTarget("Missing"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// A save attributed to the moderator and stamped "now" is rewritten by the
// fixup hook to the author's network data and submission time.
func TestStore_FixupRoundTrip(t *testing.T) {
	p, hub, pool := newPipeline(t, content.Options{})
	store := content.NewStore(pool)
	hook := fixup.NewHook(store, fixup.Options{}, slog.Default())
	defer hook.Close()
	unsub := hub.Subscribe(hook.OnCompletion)
	defer unsub()

	target := testhelper.UniqueTarget("Fixup")
	_, base := testhelper.SeedPage(t, pool, target, "base", time.Now().Add(-3*time.Hour))
	change := testhelper.BuildChange(t, target, "Alice", "edited", base)
	change.ID = 1
	hook.AddTask(fixup.NewTask(change))

	ctx := ctxutil.WithClient(context.Background(), moderatorClient)
	res, err := p.Save(ctx, pipeline.SaveRequest{
		Target: target, Author: change.Author, Text: change.Text, BaseRevID: base,
	})
	require.NoError(t, err)

	report, err := hook.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Tasks)

	var (
		revTS  time.Time
		ip     string
		xff    string
		agent  string
		tagCnt int
	)
	require.NoError(t, pool.QueryRow(ctx, `SELECT created_at FROM revisions WHERE id = $1`, res.RevisionID).Scan(&revTS))
	assert.True(t, revTS.Equal(change.Timestamp), "revision timestamp %v, want %v", revTS, change.Timestamp)

	require.NoError(t, pool.QueryRow(ctx,
		`SELECT rc.ip, cu.xff, cu.agent FROM recent_changes rc JOIN cu_changes cu ON cu.rc_id = rc.id WHERE rc.rev_id = $1`,
		res.RevisionID,
	).Scan(&ip, &xff, &agent))
	assert.Equal(t, change.Network.IP, ip)
	assert.Equal(t, change.Network.XFF, xff)
	assert.Equal(t, change.Network.UserAgent, agent)

	require.NoError(t, pool.QueryRow(ctx,
		`SELECT count(*) FROM change_tags WHERE rev_id = $1 AND tag = 'test-tag'`, res.RevisionID,
	).Scan(&tagCnt))
	assert.Equal(t, 1, tagCnt)
}
