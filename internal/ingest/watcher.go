// Package ingest is a secondary, Telegram-free ingress: image files dropped
// into a watched directory are fed to the collator, grouped per directory.
// Useful for exercising the pipeline locally against saved screenshots.
package ingest

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Prishashn/Hrextractor/constants"
	"github.com/Prishashn/Hrextractor/internal/collate"
)

// DefaultDebounce coalesces the Create/Write bursts one dropped file
// produces; the file is read only after its burst settles.
const DefaultDebounce = 200 * time.Millisecond

type Config struct {
	Root        string
	AllowedExts map[string]struct{}
	Debounce    time.Duration // per-burst coalescing delay, default DefaultDebounce
}

// StartWatcher watches cfg.Root recursively and appends every new image
// file to the collator; files appearing in the same directory within one
// debounce window collate into one submission, like an album.
//
// Writing a file emits several fsnotify events (Create plus one Write per
// flush), so events are collected into a pending set and flushed on a timer
// that resets while the burst lasts. Each path is read once, after the last
// event, and contributes exactly one entry.
func StartWatcher(ctx context.Context, cfg Config, collator *collate.Collator, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Root == "" {
		logger.Error("watcher start failed: no root provided")
		return errors.New("no root provided")
	}
	if cfg.AllowedExts == nil {
		cfg.AllowedExts = constants.AllowedImageExtensions
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Error("failed to create fsnotify watcher", "error", err)
		return err
	}

	// Add the root and any existing subdirectories.
	err = filepath.WalkDir(cfg.Root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
	if err != nil {
		logger.Error("failed to add watch root", "root", cfg.Root, "error", err)
		_ = w.Close()
		return err
	}

	var seq atomic.Int64

	go func() {
		defer func() {
			if cerr := w.Close(); cerr != nil {
				logger.Warn("watcher close failed", "error", cerr)
			}
		}()

		var timer *time.Timer
		pending := map[string]struct{}{}
		flush := make(chan struct{}, 1)

		arm := func() {
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(cfg.Debounce, func() {
				select {
				case flush <- struct{}{}:
				default:
				}
			})
		}
		defer func() {
			if timer != nil {
				timer.Stop()
			}
		}()

		flushPending := func() {
			for _, path := range slices.Sorted(maps.Keys(pending)) {
				delete(pending, path)

				img, rerr := os.ReadFile(path)
				if rerr != nil {
					logger.Warn("ingest.read_failed", "path", path, "error", rerr)
					continue
				}

				key := "drop/" + filepath.Dir(path)
				logger.Info("ingest.file", "path", path, "group_key", key, "bytes", len(img))
				collator.Add(ctx, key, collate.Entry{
					Ref:   collate.MessageRef{ChatID: 0, MessageID: seq.Add(1)},
					Image: img,
				})
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case <-flush:
				flushPending()
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if e.Op&fsnotify.Create == fsnotify.Create {
					// a new directory starts a new album group
					if st, serr := os.Stat(e.Name); serr == nil && st.IsDir() {
						if aerr := w.Add(e.Name); aerr != nil {
							logger.Warn("failed to watch new directory", "path", e.Name, "error", aerr)
						}
						continue
					}
				}
				if !allowed(e.Name, cfg.AllowedExts) || e.Op&(fsnotify.Create|fsnotify.Write) == 0 {
					continue
				}
				pending[e.Name] = struct{}{}
				arm()
			case werr, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Error("watcher error", "error", werr)
			}
		}
	}()

	return nil
}

func allowed(path string, exts map[string]struct{}) bool {
	_, ok := exts[constants.NormalizeExt(filepath.Ext(path))]
	return ok
}
