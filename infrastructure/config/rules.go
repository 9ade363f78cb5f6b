package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	domainconfig "peoplenet/domain/config"
)

// LoadDomainRules overlays the YAML rules file at path on a copy of base.
// Keys missing from the file keep the base value; unknown keys are errors.
func LoadDomainRules(path string, base *domainconfig.DomainConfig) (*domainconfig.DomainConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read domain rules: %w", err)
	}
	return ParseDomainRules(data, base)
}

// ParseDomainRules overlays YAML rules on a copy of base and validates the result
func ParseDomainRules(data []byte, base *domainconfig.DomainConfig) (*domainconfig.DomainConfig, error) {
	if base == nil {
		base = domainconfig.DefaultDomainConfig()
	}
	cfg := base.Clone()

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse domain rules: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid domain rules: %w", err)
	}
	return cfg, nil
}

// RulesWatcher serves the domain rules from a YAML file and reloads them
// when the file changes. A reload that fails to parse or validate keeps
// the previous rules.
type RulesWatcher struct {
	path      string
	base      *domainconfig.DomainConfig
	current   atomic.Pointer[domainconfig.DomainConfig]
	callbacks []func(*domainconfig.DomainConfig)
	mu        sync.Mutex
	logger    *zap.Logger
	watcher   *fsnotify.Watcher
	debounce  time.Duration
	stopCh    chan struct{}
	stopOnce  sync.Once
	done      chan struct{}
}

// NewRulesWatcher loads path over base and starts watching it
func NewRulesWatcher(path string, base *domainconfig.DomainConfig, logger *zap.Logger) (*RulesWatcher, error) {
	return newRulesWatcher(path, base, logger, 250*time.Millisecond)
}

func newRulesWatcher(path string, base *domainconfig.DomainConfig, logger *zap.Logger, debounce time.Duration) (*RulesWatcher, error) {
	initial, err := LoadDomainRules(path, base)
	if err != nil {
		return nil, err
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	// editors replace files on save, so watch the directory rather than the file
	if err := fsWatcher.Add(filepath.Dir(path)); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", path, err)
	}

	w := &RulesWatcher{
		path:     filepath.Clean(path),
		base:     base,
		logger:   logger,
		watcher:  fsWatcher,
		debounce: debounce,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
	w.current.Store(initial)
	go w.watchLoop()

	logger.Info("Domain rules hot reloading enabled", zap.String("file", path))
	return w, nil
}

// Current implements domainconfig.Provider
func (w *RulesWatcher) Current() *domainconfig.DomainConfig {
	return w.current.Load()
}

// OnChange registers a callback run after each successful reload
func (w *RulesWatcher) OnChange(callback func(*domainconfig.DomainConfig)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, callback)
}

// Stop stops watching and waits for the watch loop to exit
func (w *RulesWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		<-w.done
	})
}

func (w *RulesWatcher) watchLoop() {
	defer close(w.done)
	defer w.watcher.Close()

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(w.debounce, w.reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", zap.Error(err))

		case <-w.stopCh:
			return
		}
	}
}

func (w *RulesWatcher) reload() {
	next, err := LoadDomainRules(w.path, w.base)
	if err != nil {
		w.logger.Error("Domain rules reload failed, keeping previous rules",
			zap.String("file", w.path),
			zap.Error(err),
		)
		return
	}
	w.current.Store(next)

	w.mu.Lock()
	callbacks := make([]func(*domainconfig.DomainConfig), len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.Unlock()

	for _, cb := range callbacks {
		cb(next)
	}
	w.logger.Info("Domain rules reloaded", zap.String("file", w.path))
}
