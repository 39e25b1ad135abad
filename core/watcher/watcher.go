// Package watcher detects completed saves of an account's saved variables file.
//
// The game client never writes the database file in place: it stages the new content under
// a temporary name and renames it over the old file. fsnotify reports that as a Rename on the
// staged file immediately followed by a Create on the destination. Only that pair, with the
// destination named like the database file, is delivered; writes in progress never are.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/sourcegraph/conc"
	"go.uber.org/zap"
)

// Watcher watches saved variables directories and emits the path of each completed save.
type Watcher struct {
	fsw      *fsnotify.Watcher
	fileName string
	logger   *zap.Logger

	paths chan string
	done  chan struct{}
	wg    conc.WaitGroup

	mu       sync.Mutex
	running  bool
	stopOnce sync.Once

	// renamed records, per directory, whether the previous event was a rename.
	// Only the pump goroutine touches it.
	renamed map[string]bool
}

// New creates a watcher for files named fileName. Directories are added with Add and
// events flow after Start.
func New(fileName string, logger *zap.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Watcher{
		fsw:      fsw,
		fileName: fileName,
		logger:   logger,
		// A single slot: while a path is pending, the next delivery blocks.
		paths:   make(chan string, 1),
		done:    make(chan struct{}),
		renamed: make(map[string]bool),
	}, nil
}

// Add watches dir (non-recursively).
func (w *Watcher) Add(dir string) error {
	if err := w.fsw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	w.logger.Debug("Watching directory", zap.String("dir", dir))
	return nil
}

// Start begins delivering completed saves on Paths until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.wg.Go(func() { w.processEvents(ctx) })
	return nil
}

// Paths returns the channel of completed save paths. It is closed when the watcher stops.
func (w *Watcher) Paths() <-chan string {
	return w.paths
}

// Stop closes the underlying notifier and waits for the event pump to exit.
func (w *Watcher) Stop() error {
	var closeErr error
	w.stopOnce.Do(func() {
		close(w.done)
		closeErr = w.fsw.Close()
	})

	w.mu.Lock()
	running := w.running
	w.running = false
	w.mu.Unlock()

	if running {
		if r := w.wg.WaitAndRecover(); r != nil {
			return fmt.Errorf("watcher event pump panicked: %w", r.AsError())
		}
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close watcher: %w", closeErr)
	}
	return nil
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.paths)

	for {
		select {
		case <-w.done:
			return
		case <-ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			path, ok := w.qualify(event)
			if !ok {
				continue
			}
			w.logger.Debug("Save completed", zap.String("path", path))

			select {
			case w.paths <- path:
			case <-w.done:
				return
			case <-ctx.Done():
				return
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Filesystem watcher error", zap.Error(err))
		}
	}
}

// qualify reports whether event completes an atomic save of the database file.
func (w *Watcher) qualify(event fsnotify.Event) (string, bool) {
	dir := filepath.Dir(event.Name)
	afterRename := w.renamed[dir]
	w.renamed[dir] = event.Has(fsnotify.Rename)

	if !afterRename || !event.Has(fsnotify.Create) {
		return "", false
	}
	if filepath.Base(event.Name) != w.fileName {
		return "", false
	}
	return event.Name, true
}
