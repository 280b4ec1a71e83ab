/*-------------------------------------------------------------------------
 *
 * pgEdge RAG Bench - Configuration Reload
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package config

import (
	"fmt"
	"sync"

	"pgedge-rag-bench/internal/logging"
)

// ReloadableConfig wraps a Config with thread-safe access and reload
// capability
type ReloadableConfig struct {
	mu       sync.RWMutex
	config   *Config
	path     string
	cliFlags CLIFlags
	onReload []func(*Config)
}

// NewReloadableConfig creates a new reloadable configuration
func NewReloadableConfig(config *Config, path string, cliFlags CLIFlags) *ReloadableConfig {
	return &ReloadableConfig{
		config:   config,
		path:     path,
		cliFlags: cliFlags,
		onReload: make([]func(*Config), 0),
	}
}

// Get returns the current configuration (read-only access)
func (rc *ReloadableConfig) Get() *Config {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return rc.config
}

// Reload reloads the configuration from the file.
// Returns an error if the reload fails, but keeps the old config.
func (rc *ReloadableConfig) Reload() error {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if rc.path == "" {
		return fmt.Errorf("no configuration file path set")
	}

	newConfig, err := LoadConfig(rc.path, rc.cliFlags)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	rc.logRestartRequiredSettings(newConfig)

	rc.config = newConfig

	for _, callback := range rc.onReload {
		callback(newConfig)
	}

	logging.Info("configuration reloaded", "path", rc.path)
	return nil
}

// logRestartRequiredSettings logs settings that changed but only take
// effect on restart
func (rc *ReloadableConfig) logRestartRequiredSettings(newConfig *Config) {
	old := rc.config

	if old.OpenSearch.URL != newConfig.OpenSearch.URL {
		logging.Warn("opensearch.url changed, requires restart",
			"url", newConfig.OpenSearch.URL)
	}
	if old.Embedding.Provider != newConfig.Embedding.Provider ||
		old.Embedding.Model != newConfig.Embedding.Model {
		logging.Warn("embedding provider changed, requires restart",
			"provider", newConfig.Embedding.Provider,
			"model", newConfig.Embedding.Model)
	}
	if old.Ollama.URL != newConfig.Ollama.URL {
		logging.Info("ollama.url changed", "url", newConfig.Ollama.URL)
	}
}

// OnReload registers a callback to be called when configuration is
// reloaded. The callback receives the new configuration.
func (rc *ReloadableConfig) OnReload(fn func(*Config)) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.onReload = append(rc.onReload, fn)
}

// GetPath returns the configuration file path
func (rc *ReloadableConfig) GetPath() string {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return rc.path
}
