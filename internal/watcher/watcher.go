// Package watcher notifies subscribers when a log file on disk changes.
//
// The parent directory is watched rather than the file itself so that a
// launcher replacing latest.log on restart is still seen.
package watcher

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mskrss/background-pingu/internal/logging"
	"github.com/mskrss/background-pingu/internal/pubsub"
)

// EventKind identifies a watcher notification.
type EventKind string

const (
	// LogChanged is published after writes to the watched file settle.
	LogChanged EventKind = "log_changed"
	// LogRemoved is published when the file is deleted or renamed away.
	LogRemoved EventKind = "log_removed"
)

// WatcherEvent is the payload published on the broker.
type WatcherEvent struct {
	Type EventKind
	Path string
}

// Config configures a Watcher.
type Config struct {
	// Path is the log file to watch.
	Path string
	// DebounceDur coalesces bursts of writes into one notification.
	DebounceDur time.Duration
}

// DefaultConfig returns a config for path with the default debounce.
func DefaultConfig(path string) Config {
	return Config{
		Path:        path,
		DebounceDur: 100 * time.Millisecond,
	}
}

// Watcher publishes LogChanged events for one file.
type Watcher struct {
	path     string
	debounce time.Duration
	fsw      *fsnotify.Watcher
	broker   *pubsub.Broker[WatcherEvent]

	stop     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// New creates a watcher. Call Start to begin delivering events.
func New(cfg Config) (*Watcher, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("watcher: path is required")
	}
	path, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve watch path: %w", err)
	}
	if cfg.DebounceDur <= 0 {
		cfg.DebounceDur = DefaultConfig(path).DebounceDur
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	return &Watcher{
		path:     path,
		debounce: cfg.DebounceDur,
		fsw:      fsw,
		broker:   pubsub.NewBroker[WatcherEvent](),
		stop:     make(chan struct{}),
	}, nil
}

// Broker returns the broker events are published on.
func (w *Watcher) Broker() *pubsub.Broker[WatcherEvent] {
	return w.broker
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Start watches the file's directory and begins the event loop.
func (w *Watcher) Start() error {
	dir := filepath.Dir(w.path)
	if err := w.fsw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	w.wg.Add(1)
	go w.loop()
	logging.Debug("watching log", "path", w.path, "debounce", w.debounce)
	return nil
}

// Stop ends the event loop and closes subscriber channels.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.stop)
		err = w.fsw.Close()
		w.wg.Wait()
		w.broker.Shutdown()
	})
	return err
}

// classify maps a filesystem event on the watched path to a broker event
// type. ok is false for events on other files or that change nothing.
func (w *Watcher) classify(evt fsnotify.Event) (pubsub.EventType, bool) {
	if filepath.Clean(evt.Name) != w.path {
		return "", false
	}
	switch {
	case evt.Has(fsnotify.Remove), evt.Has(fsnotify.Rename):
		return pubsub.DeletedEvent, true
	case evt.Has(fsnotify.Create):
		return pubsub.CreatedEvent, true
	case evt.Has(fsnotify.Write):
		return pubsub.UpdatedEvent, true
	}
	return "", false
}

// merge folds the next event of a burst into the pending one. A file that is
// created and then written within a burst is still reported as created.
func merge(pending, next pubsub.EventType) pubsub.EventType {
	if next == pubsub.UpdatedEvent && pending == pubsub.CreatedEvent {
		return pending
	}
	return next
}

func newEvent(typ pubsub.EventType, path string) WatcherEvent {
	if typ == pubsub.DeletedEvent {
		return WatcherEvent{Type: LogRemoved, Path: path}
	}
	return WatcherEvent{Type: LogChanged, Path: path}
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	var timer *time.Timer
	var fire <-chan time.Time
	var pending pubsub.EventType
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.stop:
			return

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			typ, ok := w.classify(evt)
			if !ok {
				continue
			}
			if fire == nil {
				pending = typ
			} else {
				pending = merge(pending, typ)
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.broker.Publish(pending, newEvent(pending, w.path))

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logging.Warn("file watcher error", "path", w.path, "error", err)
		}
	}
}
