// Command tsspec validates, normalizes and compares TensorStore specs.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/reoring/tsspec/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, nil, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
