package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/chainsafe/files-client/internal/devserver"
	"github.com/chainsafe/files-client/internal/devserver/blob"
	"github.com/chainsafe/files-client/internal/logging"
)

func main() {
	ctx := context.Background()

	cfg, err := devserver.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	logger := logging.NewTextLogger(os.Stderr, slog.LevelInfo)

	var blobs blob.Store
	switch cfg.BlobBackend {
	case "s3":
		blobs, err = blob.NewS3Store(ctx, cfg.S3)
		if err != nil {
			log.Fatalf("%v", err)
		}
	default:
		blobs = blob.NewMemoryStore()
	}

	srv := devserver.New(devserver.Config{
		JWTSecret:    cfg.JWTSecret,
		Users:        cfg.Users,
		TotalStorage: cfg.TotalStorage,
	}, blobs, logger)

	logger.Info(ctx, "devserver listening", "addr", cfg.Addr, "blobs", cfg.BlobBackend)
	if err := srv.Run(cfg.Addr); err != nil {
		log.Fatalf("%v", err)
	}
}
