package config

import (
	"context"
	"log"
	"maps"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDelay coalesces the burst of events an editor save produces
const reloadDelay = 100 * time.Millisecond

// Manager owns the live configuration of the daemon and reloads it when the
// file changes on disk.
type Manager struct {
	mu       sync.RWMutex
	config   *Config
	path     string
	onChange func(*Config)

	watcher *fsnotify.Watcher
	wg      sync.WaitGroup
}

func NewManager() (*Manager, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return NewManagerAt(configPath)
}

// NewManagerAt manages the config file at configPath. An invalid file is
// accepted with a warning so the daemon can still report what is wrong.
func NewManagerAt(configPath string) (*Manager, error) {
	cfg, err := LoadFrom(configPath)
	if err != nil {
		log.Printf("Config manager: failed to load %s: %v", configPath, err)
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		log.Printf("Config manager: validation warning: %v", err)
	}
	log.Printf("Config manager: loaded %s", configPath)
	return &Manager{config: cfg, path: configPath}, nil
}

// GetConfig returns a copy that callers may modify freely
func (m *Manager) GetConfig() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c := *m.config
	c.Providers = maps.Clone(m.config.Providers)
	return &c
}

// OnChange registers fn to run after every successful reload
func (m *Manager) OnChange(fn func(*Config)) {
	m.mu.Lock()
	m.onChange = fn
	m.mu.Unlock()
}

func (m *Manager) StartWatching(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// watch the directory: editors replace the file instead of writing it
	if err := watcher.Add(filepath.Dir(m.path)); err != nil {
		watcher.Close()
		return err
	}
	m.watcher = watcher

	m.wg.Add(1)
	go m.watchLoop(ctx)

	log.Printf("Config manager: watching %s for changes", m.path)
	return nil
}

func (m *Manager) Stop() {
	if m.watcher != nil {
		m.watcher.Close()
	}
	m.wg.Wait()
}

func (m *Manager) watchLoop(ctx context.Context) {
	defer m.wg.Done()
	name := filepath.Base(m.path)

	var pending <-chan time.Time
	for {
		select {
		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name || !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}
			pending = time.After(reloadDelay)

		case <-pending:
			pending = nil
			m.reloadConfig()

		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Config manager: watcher error: %v", err)

		case <-ctx.Done():
			return
		}
	}
}

func (m *Manager) reloadConfig() {
	cfg, err := LoadFrom(m.path)
	if err != nil {
		log.Printf("Config manager: failed to reload config: %v", err)
		return
	}
	if err := cfg.Validate(); err != nil {
		log.Printf("Config manager: keeping previous config, new one is invalid: %v", err)
		return
	}

	m.mu.Lock()
	m.config = cfg
	onChange := m.onChange
	m.mu.Unlock()

	log.Printf("Config manager: configuration reloaded")
	if onChange != nil {
		onChange(cfg)
	}
}
