// Package watcher monitors the vault directory for dropped export files.
// Writers rarely land a file in one syscall, so events are debounced with
// a settle delay before being emitted.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Options configures the watcher behavior.
type Options struct {
	// SettleDelay is how long a file must be quiet before an event fires
	// (default: 200ms).
	SettleDelay time.Duration
	// Extensions limits events to these file extensions (default: .json).
	Extensions []string
	// IgnoreNames drops events for these exact base names. Used to keep
	// the server's own export writes from looping back as imports.
	IgnoreNames []string
}

// setDefaults applies default values to unset options.
func (o *Options) setDefaults() {
	if o.SettleDelay == 0 {
		o.SettleDelay = 200 * time.Millisecond
	}
	if o.Extensions == nil {
		o.Extensions = []string{".json"}
	}
}

// shouldIgnore filters out hidden files, temp files and foreign extensions.
func (o *Options) shouldIgnore(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return true
	}
	if strings.HasSuffix(base, ".tmp") || strings.HasSuffix(base, ".temp") {
		return true
	}
	for _, name := range o.IgnoreNames {
		if base == name {
			return true
		}
	}

	ext := strings.ToLower(filepath.Ext(base))
	for _, allowed := range o.Extensions {
		if ext == allowed {
			return false
		}
	}
	return true
}

// Watcher monitors a single directory for settled file changes.
type Watcher struct {
	logger  *slog.Logger
	opts    Options
	watcher *fsnotify.Watcher

	// Known files, used to distinguish added from modified.
	known map[string]bool

	pending map[string]*time.Timer // path -> settle timer
	mu      sync.Mutex             // protects pending and known

	events chan Event
	errors chan error
	done   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

// New creates a new vault directory watcher.
func New(logger *slog.Logger, opts Options) (*Watcher, error) {
	opts.setDefaults()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		logger:  logger,
		opts:    opts,
		watcher: fsw,
		known:   make(map[string]bool),
		pending: make(map[string]*time.Timer),
		events:  make(chan Event, 100),
		errors:  make(chan error, 10),
		done:    make(chan struct{}),
	}, nil
}

// Watch adds the vault directory to be monitored. The directory is
// created if it doesn't exist. Files already present are recorded as
// known so a restart doesn't re-import everything.
func (w *Watcher) Watch(dir string) error {
	dir = filepath.Clean(dir)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create watch directory: %w", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read watch directory: %w", err)
	}

	w.mu.Lock()
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if !w.opts.shouldIgnore(path) {
			w.known[path] = true
		}
	}
	w.mu.Unlock()

	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to add watch: %w", err)
	}

	w.logger.Info("watching vault directory", "path", dir)
	return nil
}

// Start begins watching for events.
// This method blocks until the context is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	w.wg.Add(1)
	go w.processEvents(ctx)

	<-ctx.Done()
	return nil
}

// Stop stops the watcher and releases resources.
func (w *Watcher) Stop() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.watcher.Close()
		w.wg.Wait()

		w.mu.Lock()
		for _, timer := range w.pending {
			timer.Stop()
		}
		w.pending = make(map[string]*time.Timer)
		w.mu.Unlock()
	})
	return err
}

// Events returns the channel for receiving settled file events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Errors returns the channel for receiving errors.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// processEvents processes fsnotify events.
func (w *Watcher) processEvents(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFsnotifyEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
				w.logger.Warn("watcher error channel full", "error", err)
			}
		}
	}
}

// handleFsnotifyEvent debounces raw events into settled ones.
func (w *Watcher) handleFsnotifyEvent(event fsnotify.Event) {
	path := event.Name

	if w.opts.shouldIgnore(path) {
		return
	}

	// Removals and renames fire immediately; there's nothing to settle.
	if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		w.mu.Lock()
		if timer, ok := w.pending[path]; ok {
			timer.Stop()
			delete(w.pending, path)
		}
		wasKnown := w.known[path]
		delete(w.known, path)
		w.mu.Unlock()

		if wasKnown {
			w.emit(Event{Type: EventRemoved, Path: path})
		}
		return
	}

	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}

	// Reset the settle timer for this path.
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[path]; ok {
		timer.Reset(w.opts.SettleDelay)
		return
	}

	w.pending[path] = time.AfterFunc(w.opts.SettleDelay, func() {
		w.settle(path)
	})
}

// settle fires once a file has been quiet for the settle delay.
func (w *Watcher) settle(path string) {
	w.mu.Lock()
	delete(w.pending, path)
	wasKnown := w.known[path]
	w.mu.Unlock()

	info, err := os.Stat(path)
	if err != nil {
		// File vanished between the event and the timer. The remove
		// event handles cleanup.
		return
	}
	if info.IsDir() {
		return
	}

	eventType := EventAdded
	if wasKnown {
		eventType = EventModified
	}

	w.mu.Lock()
	w.known[path] = true
	w.mu.Unlock()

	w.emit(Event{
		Type:    eventType,
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	})
}

// emit delivers an event without blocking the settle goroutine.
func (w *Watcher) emit(event Event) {
	select {
	case <-w.done:
		return
	default:
	}

	select {
	case w.events <- event:
		w.logger.Debug("vault file event",
			"type", event.Type.String(),
			"path", event.Path,
		)
	default:
		w.logger.Warn("watcher event channel full, dropping event",
			"path", event.Path,
		)
	}
}
