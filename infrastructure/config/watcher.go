package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Overrides are the runtime-tunable settings carried in the overrides
// file. Zero values mean "keep the environment default".
type Overrides struct {
	LogLevel string         `yaml:"logLevel"`
	Breaker  *BreakerConfig `yaml:"breaker"`
}

// ApplyTo merges the overrides into a config.
func (o *Overrides) ApplyTo(cfg *Config) {
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}
	if o.Breaker != nil {
		cfg.Breaker = *o.Breaker
	}
}

// Watcher watches the overrides file and notifies subscribers when it
// changes. Atomic saves (rename-into-place) are picked up by watching
// the parent directory as well.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	current  *Overrides
	mu       sync.RWMutex
	onChange []func(*Overrides)
	logger   *zap.Logger
	stopCh   chan struct{}
}

// NewWatcher loads the overrides file and starts watching it.
func NewWatcher(path string, logger *zap.Logger) (*Watcher, error) {
	current, err := loadOverrides(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load overrides: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fw.Add(path); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch overrides file: %w", err)
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		logger.Warn("failed to watch overrides directory", zap.Error(err))
	}

	w := &Watcher{
		path:    path,
		watcher: fw,
		current: current,
		logger:  logger,
		stopCh:  make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Current returns the most recently loaded overrides.
func (w *Watcher) Current() *Overrides {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// OnChange registers a callback invoked after each successful reload.
func (w *Watcher) OnChange(fn func(*Overrides)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = append(w.onChange, fn)
}

// Stop ends the watch loop.
func (w *Watcher) Stop() error {
	close(w.stopCh)
	return w.watcher.Close()
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Name != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("overrides watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) reload() {
	overrides, err := loadOverrides(w.path)
	if err != nil {
		// A bad reload keeps the last good overrides in effect.
		w.logger.Error("failed to reload overrides", zap.Error(err))
		return
	}

	w.mu.Lock()
	w.current = overrides
	callbacks := append([]func(*Overrides){}, w.onChange...)
	w.mu.Unlock()

	w.logger.Info("overrides reloaded", zap.String("path", w.path))
	for _, fn := range callbacks {
		fn(overrides)
	}
}

func loadOverrides(path string) (*Overrides, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var overrides Overrides
	if err := yaml.Unmarshal(raw, &overrides); err != nil {
		return nil, err
	}
	return &overrides, nil
}
