package config

import (
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Dynamic holds the runtime-changeable loop timings. It implements the
// explorer's IntervalSource.
type Dynamic struct {
	mu       sync.RWMutex
	interval time.Duration
	backoff  time.Duration
}

// NewDynamic seeds the dynamic settings from the loaded config.
func NewDynamic(cfg *Config) *Dynamic {
	return &Dynamic{
		interval: cfg.RefreshInterval,
		backoff:  cfg.ErrorBackoff,
	}
}

// RefreshInterval returns the current refresh interval.
func (d *Dynamic) RefreshInterval() time.Duration {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.interval
}

// ErrorBackoff returns the current error backoff interval.
func (d *Dynamic) ErrorBackoff() time.Duration {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.backoff
}

// update applies reloaded values, ignoring ones that fail the same bounds
// LoadConfig enforces.
func (d *Dynamic) update(interval, backoff time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if interval >= time.Second {
		d.interval = interval
	}
	if backoff >= d.interval {
		d.backoff = backoff
	}
}

// Watcher watches the configuration file for changes and applies the loop
// timings without a restart.
type Watcher struct {
	path    string
	dynamic *Dynamic
	watcher *fsnotify.Watcher
	logger  *zap.Logger
	stopCh  chan struct{}
}

// NewWatcher creates a watcher over the config file the service started
// with. Returns nil when the service was configured from the environment
// only.
func NewWatcher(cfg *Config, dynamic *Dynamic, logger *zap.Logger) (*Watcher, error) {
	if cfg.SourceFile() == "" {
		return nil, nil
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatcher.Add(cfg.SourceFile()); err != nil {
		fsWatcher.Close()
		return nil, err
	}

	return &Watcher{
		path:    cfg.SourceFile(),
		dynamic: dynamic,
		watcher: fsWatcher,
		logger:  logger,
		stopCh:  make(chan struct{}),
	}, nil
}

// Start begins watching in a background goroutine.
func (w *Watcher) Start() {
	go w.loop()
	w.logger.Info("Config watcher started", zap.String("path", w.path))
}

// Stop ends watching.
func (w *Watcher) Stop() {
	close(w.stopCh)
	w.watcher.Close()
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
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Config watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) reload() {
	data, err := os.ReadFile(w.path)
	if err != nil {
		w.logger.Warn("Config reload failed", zap.Error(err))
		return
	}

	var updated struct {
		RefreshInterval string `yaml:"refresh_interval"`
		ErrorBackoff    string `yaml:"error_backoff"`
	}
	if err := yaml.Unmarshal(data, &updated); err != nil {
		w.logger.Warn("Config reload failed", zap.Error(err))
		return
	}

	interval, backoff := w.dynamic.RefreshInterval(), w.dynamic.ErrorBackoff()
	if updated.RefreshInterval != "" {
		if d, err := time.ParseDuration(updated.RefreshInterval); err == nil {
			interval = d
		} else {
			w.logger.Warn("Ignoring invalid refresh_interval", zap.Error(err))
		}
	}
	if updated.ErrorBackoff != "" {
		if d, err := time.ParseDuration(updated.ErrorBackoff); err == nil {
			backoff = d
		} else {
			w.logger.Warn("Ignoring invalid error_backoff", zap.Error(err))
		}
	}

	w.dynamic.update(interval, backoff)
	w.logger.Info("Config reloaded",
		zap.Duration("refresh_interval", w.dynamic.RefreshInterval()),
		zap.Duration("error_backoff", w.dynamic.ErrorBackoff()),
	)
}
