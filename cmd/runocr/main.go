package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Prishashn/Hrextractor/constants"
	"github.com/Prishashn/Hrextractor/internal/common"
	"github.com/Prishashn/Hrextractor/internal/ocr"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "runocr <image-file>")
		os.Exit(2)
	}
	path := os.Args[1]
	if !constants.IsImageExt(filepath.Ext(path)) {
		logger.Error("unsupported image extension", "path", path)
		os.Exit(2)
	}

	img, err := os.ReadFile(path)
	if err != nil {
		logger.Error("read image", "path", path, "error", err)
		os.Exit(1)
	}

	cfg := common.LoadConfig()
	recognizer := ocr.NewRecognizer(ocr.Config{
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		TessdataDir:   cfg.OCR.TessdataDir,
		PSM:           cfg.OCR.PSM,
		OEM:           cfg.OCR.OEM,
	}, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	start := time.Now()
	text, err := recognizer.Recognize(ctx, img)
	if err != nil {
		logger.Error("recognition failed", "path", path, "error", err,
			"duration_ms", time.Since(start).Milliseconds())
		os.Exit(1)
	}

	logger.Info("recognition OK",
		"path", path,
		"text_len", len(text),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	fmt.Println(text)
}
