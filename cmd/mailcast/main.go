// Command mailcast expands a YAML campaign into one email per recipient and
// sends them in a single batch.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrymomot/bulkmail/pkg/logger"
)

const flushTimeout = 2 * time.Second

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes the CLI and returns the process exit code. Sentry is flushed
// on every path so the error that made the command fail is not lost.
func run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer logger.Flush(flushTimeout)

	cmd := newRootCmd()
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}
