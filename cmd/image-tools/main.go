package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ironsheep/image-tools/internal/cli"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	app, err := cli.New(cli.BuildInfo{Version: Version, BuildTime: BuildTime, GitCommit: GitCommit})
	if err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(cli.ExitFailure)
	}

	code := app.Run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
