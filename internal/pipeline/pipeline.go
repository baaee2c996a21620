// Package pipeline runs the one-shot finalize cycle for a completed
// submission: recognize each image in arrival order, merge the text,
// extract fields, then rescue the gaps.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Prishashn/Hrextractor/internal/collate"
	"github.com/Prishashn/Hrextractor/internal/common"
	"github.com/Prishashn/Hrextractor/internal/entity"
	"github.com/Prishashn/Hrextractor/internal/llm"
	"github.com/Prishashn/Hrextractor/internal/rescue"
)

// TextSeparator keeps two images' text from colliding into a false token
// when merged (a phone number split across images must stay split).
const TextSeparator = "\n"

// TextRecognizer is Stage 1: image bytes -> text.
type TextRecognizer interface {
	Recognize(ctx context.Context, img []byte) (string, error)
}

// RecordSink receives the final record of each submission. Optional.
type RecordSink interface {
	SaveRecord(ctx context.Context, groupKey string, fields entity.ProfileFields) error
}

// Result is what the ingress needs to reply: the complete record and the
// first entry's message ref as the threading anchor.
type Result struct {
	Fields  entity.ProfileFields
	RawText string
	ReplyTo collate.MessageRef
}

type Processor struct {
	Logger    *slog.Logger
	OCR       TextRecognizer
	Extractor llm.FieldExtractor
	Sink      RecordSink // nil when archiving is disabled
}

func NewProcessor(logger *slog.Logger, ocr TextRecognizer, extractor llm.FieldExtractor, sink RecordSink) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{Logger: logger, OCR: ocr, Extractor: extractor, Sink: sink}
}

// Process runs the full extraction cycle for one submission.
//
// Recognition failures are recovered per image as empty text: a missing
// contribution from one photo must not abort the submission, and if every
// image fails the cycle still runs on empty text so the sender gets an
// all-sentinel reply. Only a transport-level extractor failure returns an
// error, which aborts just this submission's reply.
func (p *Processor) Process(ctx context.Context, groupKey string, entries []collate.Entry) (Result, error) {
	if len(entries) == 0 {
		return Result{}, fmt.Errorf("process %s: empty submission", groupKey)
	}

	rid := uuid.New().String()
	start := time.Now()

	var merged strings.Builder
	for i, e := range entries {
		text, err := p.OCR.Recognize(ctx, e.Image)
		if err != nil {
			// fail closed: this image contributes nothing
			p.Logger.Warn("pipeline.ocr.failed",
				"req_id", rid, "group_key", groupKey, "index", i, "error", err)
			text = ""
		}
		if i > 0 {
			merged.WriteString(TextSeparator)
		}
		merged.WriteString(text)
	}
	rawText := merged.String()

	fields, raw, err := p.Extractor.ExtractFields(ctx, llm.ExtractRequest{Text: rawText})
	switch {
	case err == nil:
	case errors.Is(err, llm.ErrUnparseable):
		// malformed model output degrades to an empty candidate; the rescue
		// pass and the formatter handle total absence of every field
		p.Logger.Warn("pipeline.extract.unparseable",
			"req_id", rid, "group_key", groupKey, "raw_bytes", len(raw))
		fields = entity.ProfileFields{}
	default:
		// transport-level failure: the backend never produced output
		return Result{}, fmt.Errorf("extract fields: %w: %w", common.ErrUnavailable, err)
	}

	fields = rescue.Apply(fields, rawText)

	if p.Sink != nil {
		if err := p.Sink.SaveRecord(ctx, groupKey, fields); err != nil {
			// archival is best-effort; the reply still goes out
			p.Logger.Warn("pipeline.archive.failed",
				"req_id", rid, "group_key", groupKey, "error", err)
		}
	}

	p.Logger.Info("pipeline.process.ok",
		"req_id", rid,
		"group_key", groupKey,
		"entries", len(entries),
		"text_len", len(rawText),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	return Result{
		Fields:  fields,
		RawText: rawText,
		ReplyTo: entries[0].Ref,
	}, nil
}
