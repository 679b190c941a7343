// stmtfetch downloads the last twelve months of billing statements from the
// energy provider's customer portal.
//
// Usage:
//
//	stmtfetch [--headless] [--out dir] [--env-file .env]
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/porticus-lab/go-statement-fetch/internal/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := commands.NewRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Printf("[ERROR]: %v\n", err)
		os.Exit(1)
	}
}
