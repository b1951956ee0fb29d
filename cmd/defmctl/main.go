// Command defmctl is the operator console for the DEFM backend.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/defm/console/internal/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, cli.Options{Version: version})
	stop()
	os.Exit(code)
}
