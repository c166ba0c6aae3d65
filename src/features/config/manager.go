package config

import (
	"fmt"
	"os"
	"sync"
)

// Manager holds the application configuration and provides thread-safe
// access to it. The configuration itself is immutable after load.
type Manager struct {
	mu     sync.RWMutex
	config *Config
}

// NewManager creates a new Manager.
func NewManager(config *Config) *Manager {
	return &Manager{config: config}
}

// Get returns the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// EnsureDirectories creates the library and staging directories if they
// don't exist.
func (m *Manager) EnsureDirectories() error {
	cfg := m.Get()

	if err := os.MkdirAll(cfg.LibraryPath, 0755); err != nil {
		return fmt.Errorf("failed to create library directory: %w", err)
	}
	if err := os.MkdirAll(cfg.EffectiveStagingPath(), 0755); err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	return nil
}
