package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sunclx/seiri/src/features/ingesting"
)

// Watcher monitors the staging path recursively and emits an event per file
// once the file has stopped growing. Files are typically copied or torrented
// into staging, so a bare Create event fires long before the bytes are all
// there.
type Watcher struct {
	watcher      *fsnotify.Watcher
	watchPath    string
	stableWindow time.Duration

	// timerMutex guards the timer and size maps and the running flag.
	timerMutex sync.Mutex
	timers     map[string]*time.Timer
	sizes      map[string]int64
	running    bool

	stopChan  chan struct{}
	eventChan chan<- ingesting.FileEvent
}

// NewWatcher creates a new recursive staging watcher. stableSeconds is how
// long a file's size must hold still before it is announced.
func NewWatcher(eventChan chan<- ingesting.FileEvent, stableSeconds int) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if stableSeconds < 1 {
		stableSeconds = 1
	}

	return &Watcher{
		watcher:      fsw,
		stableWindow: time.Duration(stableSeconds) * time.Second,
		timers:       make(map[string]*time.Timer),
		sizes:        make(map[string]int64),
		eventChan:    eventChan,
		stopChan:     make(chan struct{}),
	}, nil
}

// Start begins watching the staging path and every directory below it.
func (w *Watcher) Start(ctx context.Context, watchPath string) error {
	w.watchPath = watchPath
	slog.Info("Starting staging watcher", "path", watchPath)

	if err := w.addRecursive(watchPath); err != nil {
		return err
	}

	w.timerMutex.Lock()
	w.running = true
	w.timerMutex.Unlock()
	go w.watchLoop(ctx)

	slog.Info("Staging watcher started")
	return nil
}

// Stop stops the watcher and cancels all pending stability timers.
func (w *Watcher) Stop() {
	w.timerMutex.Lock()
	if !w.running {
		w.timerMutex.Unlock()
		return
	}
	w.running = false
	for path, timer := range w.timers {
		timer.Stop()
		delete(w.timers, path)
	}
	w.timerMutex.Unlock()

	slog.Info("Stopping staging watcher")
	close(w.stopChan)
	w.watcher.Close()
}

// addRecursive watches a directory and all of its non-hidden descendants.
func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return fs.SkipDir
		}
		return w.watcher.Add(path)
	})
}

func (w *Watcher) watchLoop(ctx context.Context) {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("Staging watcher error", "error", err)

		case <-w.stopChan:
			return

		case <-ctx.Done():
			return
		}
	}
}

// handleEvent processes a single file system event.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	switch {
	case event.Op&(fsnotify.Create|fsnotify.Write) != 0:
		info, err := os.Stat(event.Name)
		if err != nil {
			return
		}
		if info.IsDir() {
			// New staging subfolder; watch it and pick up files already
			// inside it (they arrived before the watch did).
			if event.Op&fsnotify.Create != 0 && !strings.HasPrefix(info.Name(), ".") {
				if err := w.addRecursive(event.Name); err != nil {
					slog.Warn("Failed to watch new staging folder", "dir", event.Name, "error", err)
				}
				w.scheduleExisting(event.Name)
			}
			return
		}
		if !ingesting.IsSupportedFile(event.Name) {
			return
		}
		w.scheduleStabilityCheck(event.Name, info.Size())

	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		w.cancelTimer(event.Name)
		w.emit(event.Name, ingesting.FileRemoved)
	}
}

// scheduleExisting schedules stability checks for supported files already
// present under a freshly watched directory.
func (w *Watcher) scheduleExisting(dir string) {
	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !ingesting.IsSupportedFile(path) {
			return nil
		}
		if info, statErr := os.Stat(path); statErr == nil {
			w.scheduleStabilityCheck(path, info.Size())
		}
		return nil
	})
}

// scheduleStabilityCheck (re)arms the per-file timer. Every write resets
// the clock; the file is announced only after a full quiet window.
func (w *Watcher) scheduleStabilityCheck(path string, size int64) {
	w.timerMutex.Lock()
	defer w.timerMutex.Unlock()

	if !w.running {
		return
	}
	w.sizes[path] = size
	if timer, ok := w.timers[path]; ok {
		timer.Reset(w.stableWindow)
		return
	}
	w.timers[path] = time.AfterFunc(w.stableWindow, func() {
		w.checkStable(path)
	})
}

// checkStable fires when a file's quiet window elapses. If the size moved
// since the last look the timer is re-armed, otherwise the file is emitted.
func (w *Watcher) checkStable(path string) {
	info, err := os.Stat(path)
	if err != nil {
		w.cancelTimer(path)
		return
	}

	w.timerMutex.Lock()
	lastSize, ok := w.sizes[path]
	if !ok {
		w.timerMutex.Unlock()
		return
	}
	if info.Size() != lastSize {
		w.sizes[path] = info.Size()
		if timer, exists := w.timers[path]; exists {
			timer.Reset(w.stableWindow)
		}
		w.timerMutex.Unlock()
		return
	}
	delete(w.timers, path)
	delete(w.sizes, path)
	w.timerMutex.Unlock()

	slog.Info("Staging file stable", "file", path)
	w.emit(path, ingesting.FileCreated)
}

func (w *Watcher) cancelTimer(path string) {
	w.timerMutex.Lock()
	defer w.timerMutex.Unlock()
	if timer, ok := w.timers[path]; ok {
		timer.Stop()
		delete(w.timers, path)
	}
	delete(w.sizes, path)
}

func (w *Watcher) emit(path string, eventType ingesting.FileEventType) {
	event := ingesting.FileEvent{
		Path:      path,
		EventType: eventType,
		Timestamp: time.Now(),
	}

	select {
	case w.eventChan <- event:
	default:
		slog.Warn("Event channel full, dropping file event", "file", path)
	}
}
