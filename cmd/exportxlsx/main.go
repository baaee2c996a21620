package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/Prishashn/Hrextractor/internal/archive"
	"github.com/Prishashn/Hrextractor/internal/common"
	"github.com/Prishashn/Hrextractor/internal/export"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	out := flag.String("o", "profiles.xlsx", "output file path")
	limit := flag.Int("limit", 0, "max records to export (0 = all)")
	flag.Parse()

	cfg := common.LoadConfig()
	if cfg.Archive.DSN == "" {
		logger.Error("HRX_ARCHIVE_DSN env var is required")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	store, err := archive.Open(ctx, cfg.Archive.DSN, logger)
	if err != nil {
		logger.Error("open archive", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Error("close archive", "error", cerr)
		}
	}()

	svc := export.NewService(store, logger)
	data, err := svc.ExportRecordsXLSX(ctx, *limit)
	if err != nil {
		logger.Error("export failed", "error", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*out, data, 0o644); err != nil {
		logger.Error("write output", "path", *out, "error", err)
		os.Exit(1)
	}
	logger.Info("export written", "path", *out, "bytes", len(data))
}
