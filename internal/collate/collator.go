// Package collate groups photo arrivals into logical submissions. Telegram
// gives no "album complete" signal, so completion is inferred by silence:
// every arrival schedules a check one debounce window later, and the first
// check that still finds the key pending takes the whole entry list.
package collate

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultDebounceWindow mirrors the grouping delay the bot has always used.
const DefaultDebounceWindow = 1500 * time.Millisecond

// MessageRef identifies the chat message a photo arrived in. Synthetic
// ingresses (the drop folder) use ChatID 0.
type MessageRef struct {
	ChatID    int64
	MessageID int64
}

// Entry is one photo's contribution to a submission, in arrival order.
type Entry struct {
	Ref   MessageRef
	Image []byte
}

// FinalizeFunc consumes a completed submission exactly once per group key.
type FinalizeFunc func(ctx context.Context, groupKey string, entries []Entry)

type Collator struct {
	window   time.Duration
	finalize FinalizeFunc
	logger   *slog.Logger

	mu      sync.Mutex
	pending map[string][]Entry
	closed  bool

	wg sync.WaitGroup
}

func New(window time.Duration, finalize FinalizeFunc, logger *slog.Logger) *Collator {
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Collator{
		window:   window,
		finalize: finalize,
		logger:   logger,
		pending:  make(map[string][]Entry),
	}
}

// Add appends an entry to groupKey's submission and schedules a completion
// check one debounce window from now. Entries appended by later arrivals
// before that check runs are swept up by whichever check finalizes first.
func (c *Collator) Add(ctx context.Context, groupKey string, e Entry) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.logger.Warn("collate.add_after_shutdown", "group_key", groupKey)
		return
	}
	c.pending[groupKey] = append(c.pending[groupKey], e)
	n := len(c.pending[groupKey])
	c.wg.Add(1)
	c.mu.Unlock()

	c.logger.Debug("collate.append",
		"group_key", groupKey,
		"entries", n,
		"chat_id", e.Ref.ChatID,
		"message_id", e.Ref.MessageID,
	)

	time.AfterFunc(c.window, func() {
		defer c.wg.Done()
		c.check(ctx, groupKey)
	})
}

// take is the sole finalize path: check-and-remove as one atomic unit, so of
// N concurrent checks for a key exactly one receives a non-nil list.
func (c *Collator) take(groupKey string) []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	entries, ok := c.pending[groupKey]
	if !ok {
		return nil
	}
	delete(c.pending, groupKey)
	return entries
}

func (c *Collator) check(ctx context.Context, groupKey string) {
	entries := c.take(groupKey)
	if entries == nil {
		// a sibling arrival's check already consumed this submission
		c.logger.Debug("collate.already_finalized", "group_key", groupKey)
		return
	}

	c.logger.Info("collate.finalize", "group_key", groupKey, "entries", len(entries))
	c.finalize(ctx, groupKey, entries)
}

// PendingGroups reports how many submissions are currently open.
func (c *Collator) PendingGroups() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Shutdown stops accepting arrivals and waits for in-flight debounce checks
// and finalizations to drain, or for ctx to expire.
func (c *Collator) Shutdown(ctx context.Context) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); c.wg.Wait() }()

	select {
	case <-ctx.Done():
		c.logger.Warn("collate.shutdown_interrupted")
	case <-done:
		c.logger.Info("collate.drained")
	}
}
