package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/chainsafe/files-client/internal/cli"
	"github.com/chainsafe/files-client/internal/flagx"
	"github.com/chainsafe/files-client/internal/logging"
)

func main() {
	cfg, err := cli.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	logger := logging.NewTextLogger(os.Stderr, slog.LevelWarn)

	app := cli.NewApp(cfg, logger)
	args := flagx.StripArgs(os.Args[1:], []string{"-c", "-config"})
	if err := app.Run(context.Background(), args); err != nil {
		log.Fatalf("%v", err)
	}
}
