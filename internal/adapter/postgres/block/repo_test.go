package block_test

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/modqueue-backend/internal/adapter/postgres/block"
	"github.com/heartmarshall/modqueue-backend/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/modqueue-backend/internal/domain"
)

func TestRepo_Block_Idempotent(t *testing.T) {
	t.Parallel()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := block.New(mock)
	b := domain.Block{Address: "Spammer", BlockerID: 1, BlockerName: "Mod", CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}

	mock.ExpectExec(`INSERT INTO moderation_block .* ON CONFLICT \(address\) DO NOTHING`).
		WithArgs("Spammer", int64(1), "Mod", b.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO moderation_block`).
		WithArgs("Spammer", int64(1), "Mod", b.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	added, err := repo.Block(context.Background(), b)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = repo.Block(context.Background(), b)
	require.NoError(t, err)
	assert.False(t, added)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_BlockUnblockRoundTrip(t *testing.T) {
	t.Parallel()
	pool := testhelper.SetupTestDB(t)
	repo := block.New(pool)
	ctx := context.Background()

	address := "Spammer_" + testhelper.UniqueTarget("b").Title

	blocked, err := repo.IsBlocked(ctx, address)
	require.NoError(t, err)
	assert.False(t, blocked)

	added, err := repo.Block(ctx, domain.Block{Address: address, BlockerID: 1, BlockerName: "Mod", CreatedAt: time.Now()})
	require.NoError(t, err)
	assert.True(t, added)

	blocked, err = repo.IsBlocked(ctx, address)
	require.NoError(t, err)
	assert.True(t, blocked)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	var found bool
	for _, b := range list {
		found = found || b.Address == address
	}
	assert.True(t, found)

	removed, err := repo.Unblock(ctx, address)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Unblock(ctx, address)
	require.NoError(t, err)
	assert.False(t, removed)
}
