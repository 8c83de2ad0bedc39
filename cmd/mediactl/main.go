package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"mediadl/internal/bootstrap"
	"mediadl/internal/cli"
	"mediadl/internal/infra"
)

func main() {
	infra.LoadDotEnv()

	cfg, err := infra.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	build := func(mode string) (*bootstrap.Services, error) {
		return bootstrap.Build(cfg, logger, mode)
	}
	if err := cli.NewRootCmd(build).ExecuteContext(ctx); err != nil {
		logger.Error().Err(err).Msg("mediactl failed")
		os.Exit(1)
	}
}
