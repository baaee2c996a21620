package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"go.uber.org/zap"

	"github.com/Prishashn/Hrextractor/internal/archive"
	"github.com/Prishashn/Hrextractor/internal/collate"
	"github.com/Prishashn/Hrextractor/internal/common"
	"github.com/Prishashn/Hrextractor/internal/format"
	"github.com/Prishashn/Hrextractor/internal/ingest"
	"github.com/Prishashn/Hrextractor/internal/llm/groq"
	"github.com/Prishashn/Hrextractor/internal/ocr"
	"github.com/Prishashn/Hrextractor/internal/pipeline"
	"github.com/Prishashn/Hrextractor/internal/telegram"
)

const finalizeTimeout = 2 * time.Minute

func main() {
	// Logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()
	log := logger.Sugar()

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(slogger)

	// Env
	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	// Context with signal
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Collaborators
	recognizer := ocr.NewRecognizer(ocr.Config{
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		TessdataDir:   cfg.OCR.TessdataDir,
		PSM:           cfg.OCR.PSM,
		OEM:           cfg.OCR.OEM,
	}, slogger)

	extractor := groq.NewClient(groq.Config{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		Timeout: cfg.LLM.Timeout,
	}, slogger)

	var sink pipeline.RecordSink
	if cfg.Archive.DSN != "" {
		store, err := archive.Open(ctx, cfg.Archive.DSN, slogger)
		if err != nil {
			log.Fatalf("open archive: %v", err)
		}
		defer func() {
			if cerr := store.Close(); cerr != nil {
				log.Errorf("close archive: %v", cerr)
			}
		}()
		sink = store
	}

	proc := pipeline.NewProcessor(slogger, recognizer, extractor, sink)

	botClient, err := telegram.NewClient(telegram.Config{
		BotToken:    cfg.Telegram.BotToken,
		BaseURL:     cfg.Telegram.BaseURL,
		PollTimeout: cfg.Telegram.PollTimeout,
	}, slogger)
	if err != nil {
		log.Fatalf("telegram client: %v", err)
	}

	// Finalize path: one extraction + one reply per submission. Runs on its
	// own deadline so an in-flight submission survives shutdown signals.
	finalize := func(addCtx context.Context, groupKey string, entries []collate.Entry) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(addCtx), finalizeTimeout)
		defer cancel()

		res, perr := proc.Process(fctx, groupKey, entries)
		if perr != nil {
			slogger.Error("finalize.failed", "group_key", groupKey, "error", perr)
			return
		}
		text := format.Reply(res.Fields)
		if res.ReplyTo.ChatID == 0 {
			// drop-folder submissions have no chat to answer
			slogger.Info("finalize.local_result", "group_key", groupKey, "reply", text)
			return
		}
		if serr := botClient.SendReply(fctx, res.ReplyTo.ChatID, res.ReplyTo.MessageID, text); serr != nil {
			slogger.Error("finalize.reply_failed", "group_key", groupKey, "error", serr)
		}
	}

	collator := collate.New(cfg.Collate.DebounceWindow, finalize, slogger)

	if cfg.Ingest.DropDir != "" {
		if werr := ingest.StartWatcher(ctx, ingest.Config{
			Root:     cfg.Ingest.DropDir,
			Debounce: cfg.Ingest.Debounce,
		}, collator, slogger); werr != nil {
			log.Fatalf("drop watcher: %v", werr)
		}
		log.Infow("drop folder ingress enabled", "dir", cfg.Ingest.DropDir)
	}

	// gRPC health endpoint
	grpcServer := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		log.Fatalf("listen: %v", err)
	}
	go func() {
		if serr := grpcServer.Serve(lis); serr != nil {
			log.Fatalf("grpc serve: %v", serr)
		}
	}()
	log.Infof("health serving on %s", cfg.Server.GRPCAddr)

	handler := telegram.NewHandler(botClient, collator, slogger)
	go func() {
		if rerr := handler.Run(ctx); rerr != nil && ctx.Err() == nil {
			log.Errorf("polling stopped: %v", rerr)
			stop()
		}
	}()
	log.Infof("🤖 Bot running...")

	<-ctx.Done()
	log.Info("shutting down...")

	drainCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	collator.Shutdown(drainCtx)
	cancel()

	grpcServer.GracefulStop()
	fmt.Println("stopped.")
}
