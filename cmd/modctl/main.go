// Command modctl runs maintenance tasks against the moderation queue:
// migrations, queue summaries, batch approval or rejection and purging of
// old rejected rows.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/heartmarshall/modqueue-backend/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx)
	stop()
	os.Exit(code)
}
