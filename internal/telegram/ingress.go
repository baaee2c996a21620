package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Prishashn/Hrextractor/internal/collate"
)

// pollRetryDelay spaces out retries after a failed getUpdates call so a
// transient API outage doesn't spin the loop.
const pollRetryDelay = 2 * time.Second

// Handler is the thin ingress: it polls for photo messages, downloads the
// largest rendition of each photo, and feeds the collator. Everything after
// that (merge, extract, reply) happens in the collator's finalize path.
type Handler struct {
	client   *Client
	collator *collate.Collator
	logger   *slog.Logger

	offset int64
}

func NewHandler(client *Client, collator *collate.Collator, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{client: client, collator: collator, logger: logger}
}

// Run long-polls until ctx is cancelled.
func (h *Handler) Run(ctx context.Context) error {
	h.logger.Info("telegram.polling_started")
	for {
		updates, err := h.client.GetUpdates(ctx, h.offset)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			h.logger.Error("telegram.poll_failed", "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(pollRetryDelay):
			}
			continue
		}

		for _, upd := range updates {
			if upd.UpdateID >= h.offset {
				h.offset = upd.UpdateID + 1
			}
			h.handleMessage(ctx, upd.Message)
		}
	}
}

func (h *Handler) handleMessage(ctx context.Context, msg *Message) {
	if msg == nil || len(msg.Photo) == 0 {
		return
	}
	if msg.From != nil && msg.From.IsBot {
		return
	}

	key := GroupKey(msg)

	// renditions are listed smallest first; take the largest
	photo := msg.Photo[len(msg.Photo)-1]

	file, err := h.client.GetFile(ctx, photo.FileID)
	if err != nil {
		h.logger.Error("telegram.get_file_failed",
			"group_key", key, "file_id", photo.FileID, "error", err)
		return
	}
	img, err := h.client.DownloadFile(ctx, file.FilePath)
	if err != nil {
		h.logger.Error("telegram.download_failed",
			"group_key", key, "file_path", file.FilePath, "error", err)
		return
	}

	h.collator.Add(ctx, key, collate.Entry{
		Ref:   collate.MessageRef{ChatID: msg.Chat.ID, MessageID: msg.MessageID},
		Image: img,
	})
}

// GroupKey derives the submission key for a photo message: the chat-scoped
// album id when Telegram reports one, otherwise the message's own id (so a
// lone photo forms its own one-item submission).
func GroupKey(msg *Message) string {
	if msg.MediaGroupID != "" {
		return fmt.Sprintf("chat/%d/album/%s", msg.Chat.ID, msg.MediaGroupID)
	}
	return fmt.Sprintf("chat/%d/msg/%d", msg.Chat.ID, msg.MessageID)
}
