package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/plant-catalog-api/internal/config"
	"github.com/urfave/cli/v2"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	app := &cli.App{
		Name:  "catalogctl",
		Usage: "Operate the plant catalog store",
		Commands: []*cli.Command{
			bootstrapCmd(cfg),
			importCmd(cfg),
			imageCmd(cfg),
		},
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	if err := app.RunContext(ctx, os.Args); err != nil {
		slog.Error("catalogctl failed", "err", err)
		os.Exit(1)
	}
}
