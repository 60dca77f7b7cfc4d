package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/awnumar/memguard"
	"github.com/dmitrijs2005/securedrive/internal/buildinfo"
	"github.com/dmitrijs2005/securedrive/internal/client/cli"
	"github.com/dmitrijs2005/securedrive/internal/client/config"
	"github.com/dmitrijs2005/securedrive/internal/logging"
)

func main() {
	// wipe guarded key memory on Ctrl-C and on normal exit
	memguard.CatchInterrupt()
	defer memguard.Purge()

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	logger := logging.NewTextLogger(os.Stderr, slog.LevelWarn)

	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg, logger)
	if err != nil {
		logger.Error(ctx, "startup failed", "error", err)
		memguard.SafeExit(1)
	}

	app.Run(ctx)
}
