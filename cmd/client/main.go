package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/iudanet/villabook/internal/client/cli"
	"github.com/iudanet/villabook/internal/client/iocli"
	"github.com/iudanet/villabook/internal/config"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	cli.Version = fmt.Sprintf("%s (built %s, commit %s)", Version, BuildDate, GitCommit)

	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := cli.Execute(ctx, cfg, iocli.NewStdio(), os.Args[1:])
	stop()
	os.Exit(code)
}
