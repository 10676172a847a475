package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jgivc/libmvbundle/internal/app"
	"github.com/jgivc/libmvbundle/internal/common"
	"github.com/jgivc/libmvbundle/internal/handler/cli"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand(app.New(), version).ExecuteContext(ctx); err != nil {
		if !errors.Is(err, common.ErrNotAcknowledged) {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}

		stop()
		os.Exit(1)
	}
}
