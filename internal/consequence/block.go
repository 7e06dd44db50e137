package consequence

import (
	"context"

	"github.com/heartmarshall/modqueue-backend/internal/domain"
)

// BlockUser adds an author to the spam block list. Returns false when the
// author was already blocked.
type BlockUser struct {
	Block domain.Block
}

func (BlockUser) Name() string { return NameBlockUser }

func (c BlockUser) Apply(ctx context.Context, env *Env) (any, error) {
	return env.Blocks.Block(ctx, c.Block)
}

// UnblockUser removes an author from the block list. Returns false when the
// author was not blocked.
type UnblockUser struct {
	Address string
}

func (UnblockUser) Name() string { return NameUnblockUser }

func (c UnblockUser) Apply(ctx context.Context, env *Env) (any, error) {
	return env.Blocks.Unblock(ctx, c.Address)
}
