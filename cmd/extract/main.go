package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/Prishashn/Hrextractor/internal/common"
	"github.com/Prishashn/Hrextractor/internal/format"
	"github.com/Prishashn/Hrextractor/internal/llm"
	"github.com/Prishashn/Hrextractor/internal/llm/groq"
	"github.com/Prishashn/Hrextractor/internal/rescue"
)

// extract runs the LLM + rescue stages on text from stdin (or a file
// argument) and prints the formatted reply. Handy for prompt tuning
// without the bot or OCR in the loop.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if os.Getenv("GROQ_API_KEY") == "" {
		logger.Error("GROQ_API_KEY env var is required")
		os.Exit(2)
	}

	var text []byte
	var err error
	if len(os.Args) >= 2 {
		text, err = os.ReadFile(os.Args[1])
	} else {
		text, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		logger.Error("read input", "error", err)
		os.Exit(1)
	}

	cfg := common.LoadConfig()
	client := groq.NewClient(groq.Config{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		Timeout: cfg.LLM.Timeout,
	}, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	start := time.Now()
	fields, raw, err := client.ExtractFields(ctx, llm.ExtractRequest{Text: string(text)})
	if err != nil {
		logger.Error("extraction failed", "error", err, "raw_bytes", len(raw),
			"duration_ms", time.Since(start).Milliseconds())
		os.Exit(1)
	}

	fields = rescue.Apply(fields, string(text))

	logger.Info("extraction OK",
		"duration_ms", time.Since(start).Milliseconds(),
		"raw", string(raw),
	)
	fmt.Println(format.Reply(fields))
}
