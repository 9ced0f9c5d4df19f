package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/poiesic/stratum"
	"github.com/poiesic/stratum/ingestion"
	"github.com/poiesic/stratum/tabular"
	"github.com/urfave/cli/v2"
)

// settleDelay is how long a file must go without writes before it is ingested.
const settleDelay = 500 * time.Millisecond

func watchCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("exactly one directory is required")
	}
	dir := c.Args().First()
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	return withPipeline(c, nil, func(_ *stratum.Database, pipeline *ingestion.Pipeline) error {
		logger := slog.Default().With("component", "watch")
		return watchDir(c.Context, dir, settleDelay, logger, func(ctx context.Context, path string) {
			report, err := pipeline.Run(ctx, path)
			if err != nil {
				logger.Error("error processing file", "path", path, "err", err)
				return
			}
			logger.Info("processed file", "path", path,
				"raw_inserted", report.Raw.Inserted,
				"raw_skipped", report.Raw.Skipped,
				"normalized", report.Normalized.Inserted,
				"enriched", report.Enriched.Inserted)
		})
	})
}

// watchDir calls handle once for each supported file created or written in
// dir, after it has been quiet for delay. It returns when ctx is canceled.
// Handlers run one at a time.
func watchDir(ctx context.Context, dir string, delay time.Duration, logger *slog.Logger, handle func(context.Context, string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	logger.Info("watching directory", "dir", dir)

	ctx, cancel := context.WithCancel(ctx)

	var (
		mu      sync.Mutex
		timers  = make(map[string]*time.Timer)
		ready   = make(chan string, 16)
		running sync.WaitGroup
	)
	defer func() {
		mu.Lock()
		for _, t := range timers {
			t.Stop()
		}
		mu.Unlock()
	}()

	running.Add(1)
	go func() {
		defer running.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case path := <-ready:
				handle(ctx, path)
			}
		}
	}()
	defer running.Wait()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !tabular.DefaultRegistry.Supports(event.Name) || isHidden(event.Name) {
				continue
			}
			path := event.Name
			logger.Debug("file event", "path", path, "op", event.Op.String())

			mu.Lock()
			if t, ok := timers[path]; ok {
				t.Reset(delay)
			} else {
				timers[path] = time.AfterFunc(delay, func() {
					mu.Lock()
					delete(timers, path)
					mu.Unlock()
					select {
					case ready <- path:
					case <-ctx.Done():
					}
				})
			}
			mu.Unlock()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher error", "err", err)
		}
	}
}

func isHidden(path string) bool {
	name := filepath.Base(path)
	return len(name) > 0 && (name[0] == '.' || name[0] == '~')
}
