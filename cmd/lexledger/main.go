package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"lexledger/internal/cli"
)

func main() {
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := cli.SetupLogger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, cli.Options{
		Config: cfg,
		NewApp: func(ctx context.Context) (*cli.App, error) {
			return cli.NewApp(ctx, cfg, logger)
		},
	})
	stop()
	os.Exit(code)
}
