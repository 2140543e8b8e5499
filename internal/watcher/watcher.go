// Package watcher ingests PDF files as they appear in a directory.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driving"
	"github.com/custodia-labs/docchat/internal/logger"
)

// DefaultDebounce is how long a file must stay quiet before it is ingested.
const DefaultDebounce = 500 * time.Millisecond

// Reporter receives the outcome of every ingested file.
type Reporter func(path string, item domain.IngestItem)

// Watcher ingests *.pdf files created or written in one directory.
// Subdirectories are not watched.
type Watcher struct {
	dir      string
	ingest   driving.IngestService
	debounce time.Duration
	report   Reporter
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a changed file is ingested.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithReporter sets a callback invoked after each ingestion attempt.
func WithReporter(r Reporter) Option {
	return func(w *Watcher) {
		w.report = r
	}
}

// New creates a watcher for dir.
func New(dir string, ingest driving.IngestService, opts ...Option) *Watcher {
	w := &Watcher{
		dir:      dir,
		ingest:   ingest,
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches the directory until ctx is cancelled.
// Files are ingested one at a time in the order they settle.
func (w *Watcher) Run(ctx context.Context) error {
	info, err := os.Stat(w.dir)
	if err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, w.dir)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}
	logger.Info("Watching %s for PDF files", w.dir)

	ready := make(chan string, 16)
	var mu sync.Mutex
	timers := make(map[string]*time.Timer)
	defer func() {
		mu.Lock()
		for _, t := range timers {
			t.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			path, ok := w.handleFsEvent(event)
			if !ok {
				continue
			}
			mu.Lock()
			if old, exists := timers[path]; exists {
				old.Stop()
			}
			var t *time.Timer
			t = time.AfterFunc(w.debounce, func() {
				mu.Lock()
				current := timers[path] == t
				if current {
					delete(timers, path)
				}
				mu.Unlock()
				if !current {
					return
				}
				select {
				case ready <- path:
				case <-ctx.Done():
				}
			})
			timers[path] = t
			mu.Unlock()

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)

		case path := <-ready:
			w.ingestFile(ctx, path)
		}
	}
}

// handleFsEvent returns the path to ingest for event, if any.
// Only creates and writes of visible *.pdf files qualify.
func (w *Watcher) handleFsEvent(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return "", false
	}

	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") || !strings.EqualFold(filepath.Ext(name), ".pdf") {
		return "", false
	}

	info, err := os.Stat(event.Name)
	if err != nil || info.IsDir() {
		return "", false
	}
	return event.Name, true
}

func (w *Watcher) ingestFile(ctx context.Context, path string) {
	item := domain.IngestItem{Filename: filepath.Base(path)}

	data, err := os.ReadFile(path)
	if err != nil {
		item.Err = err
		logger.Warn("Reading %s: %v", path, err)
		w.emit(path, item)
		return
	}

	result, err := w.ingest.Ingest(ctx, []domain.Upload{{Filename: item.Filename, Content: data}})
	switch {
	case len(result.Items) > 0:
		item = result.Items[0]
	case err != nil:
		item.Err = err
	}

	if item.Err != nil {
		logger.Warn("Ingesting %s: %v", path, item.Err)
	} else {
		logger.Info("Ingested %s as store %s", path, item.StoreID)
	}
	w.emit(path, item)
}

func (w *Watcher) emit(path string, item domain.IngestItem) {
	if w.report != nil {
		w.report(path, item)
	}
}
