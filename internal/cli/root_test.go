package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"migrate", "pending", "approve-all", "reject-all", "purge"}

	for _, name := range commands {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			require.NotNil(t, sub)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	env := cmd.PersistentFlags().Lookup("env-file")
	require.NotNil(t, env)
	assert.Equal(t, ".env", env.DefValue)
	cfg := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, cfg)
	assert.Empty(t, cfg.DefValue)
	assert.NotNil(t, cmd.PersistentFlags().Lookup("moderator"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("moderator-id"))
}

func TestModerator(t *testing.T) {
	opts := &RootOptions{}
	_, err := opts.moderator()
	assert.Error(t, err)

	opts = &RootOptions{ModeratorID: 3, ModeratorName: "some mod"}
	m, err := opts.moderator()
	require.NoError(t, err)
	assert.Equal(t, "Some_mod", m.Name)
	assert.Equal(t, int64(3), m.ID)
}

func TestAuthorFlags_PreloadID(t *testing.T) {
	assert.Equal(t, "[Alice", (&authorFlags{name: "alice"}).preloadID())
	assert.Equal(t, "]tok", (&authorFlags{anonToken: "tok"}).preloadID())
}

func TestLoadEnvFile_MissingIsIgnored(t *testing.T) {
	assert.NoError(t, loadEnvFile(t.TempDir()+"/absent.env"))
	assert.NoError(t, loadEnvFile(""))
}

func TestRootHelp_ListsEnvironment(t *testing.T) {
	cmd := NewRootCommand()

	assert.Contains(t, cmd.Long, "DATABASE_DSN")
	assert.Contains(t, cmd.Long, "MODERATION_APPROVE_ALL_LIMIT")
	assert.Contains(t, cmd.Version, "modqueue ")
}
