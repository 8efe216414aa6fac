package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const debounceDelay = 250 * time.Millisecond

// Watcher reloads the config file when it changes on disk.
type Watcher struct {
	path     string
	logger   *zap.Logger
	onChange func(Config)
	fs       *fsnotify.Watcher

	mu       sync.Mutex
	debounce *time.Timer
	stopOnce sync.Once
	stopCh   chan struct{}
}

// Watch starts watching the config file at path. onChange receives every
// reloaded config that validates; invalid edits are logged and skipped. The
// callback runs on the watcher's goroutine.
func Watch(path string, logger *zap.Logger, onChange func(Config)) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	// editors replace files on save, so watch the directory
	dir := filepath.Dir(path)
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	w := &Watcher{
		path:     filepath.Clean(path),
		logger:   logger,
		onChange: onChange,
		fs:       fsw,
		stopCh:   make(chan struct{}),
	}
	go w.loop()
	logger.Debug("watching config", zap.String("path", w.path))
	return w, nil
}

func (w *Watcher) loop() {
	defer w.fs.Close()
	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.logger.Debug("config file changed", zap.String("op", event.Op.String()))
			w.schedule()
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", zap.Error(err))
		case <-w.stopCh:
			return
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(debounceDelay, w.reload)
}

func (w *Watcher) reload() {
	select {
	case <-w.stopCh:
		return
	default:
	}
	cfg, err := load(w.path)
	if err != nil {
		w.logger.Error("config reload rejected", zap.Error(err))
		return
	}
	w.logger.Info("config reloaded", zap.String("path", w.path))
	if w.onChange != nil {
		w.onChange(cfg)
	}
}

// Stop ends the watch. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.mu.Lock()
		if w.debounce != nil {
			w.debounce.Stop()
		}
		w.mu.Unlock()
	})
}
