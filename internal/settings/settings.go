// Package settings provides application settings management.
// Settings are stored as JSON under the user config directory and merged with
// environment variables for credentials.
package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"novel-translator/internal/logger"
	"novel-translator/internal/types"
)

const (
	// SettingsFileName is the name of the settings file
	SettingsFileName = "settings.json"
	// EnvOpenAIAPIKey is the environment variable name for the OpenAI API key
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
	// EnvOpenAIBaseURL is the environment variable name for the OpenAI base URL
	EnvOpenAIBaseURL = "OPENAI_BASE_URL"
	// MaxRecentProjects bounds the recently-opened project list
	MaxRecentProjects = 10
)

// Manager manages the application settings file.
type Manager struct {
	filePath string
	config   *types.Config
	mu       sync.RWMutex
}

// NewManager creates a settings manager backed by the default path
// (~/.config/novel-translator/settings.json).
func NewManager() (*Manager, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		logger.Error("failed to get user home directory", err)
		return nil, types.NewAppError(types.ErrConfig, "failed to get user home directory", err)
	}
	filePath := filepath.Join(homeDir, ".config", "novel-translator", SettingsFileName)

	m := &Manager{filePath: filePath}
	if err := m.Load(); err != nil {
		return nil, err
	}
	return m, nil
}

// NewManagerWithPath creates a settings manager with a custom path.
// Useful for testing.
func NewManagerWithPath(filePath string) *Manager {
	m := &Manager{filePath: filePath}
	_ = m.Load()
	return m
}

// Load reads the settings file. A missing file or invalid JSON falls back to
// defaults rather than failing.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	def := types.DefaultConfig()
	data, err := os.ReadFile(m.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("settings file not found, using defaults", logger.String("path", m.filePath))
			m.config = &def
			return nil
		}
		logger.Error("failed to read settings file", err, logger.String("path", m.filePath))
		return types.NewAppError(types.ErrConfig, "failed to read settings file", err)
	}

	config := &types.Config{}
	if err := json.Unmarshal(data, config); err != nil {
		logger.Warn("invalid settings file, using defaults",
			logger.String("path", m.filePath), logger.Err(err))
		m.config = &def
		return nil
	}

	// Apply defaults for empty fields
	if config.OpenAIBaseURL == "" {
		config.OpenAIBaseURL = def.OpenAIBaseURL
	}
	if config.OpenAIModel == "" {
		config.OpenAIModel = def.OpenAIModel
	}
	if config.Concurrency <= 0 {
		config.Concurrency = def.Concurrency
	}

	m.config = config
	return nil
}

// Save writes the settings file atomically (temp file + rename).
func (m *Manager) Save() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saveLocked()
}

func (m *Manager) saveLocked() error {
	dir := filepath.Dir(m.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		logger.Error("failed to create settings directory", err, logger.String("dir", dir))
		return types.NewAppError(types.ErrConfig, "failed to create settings directory", err)
	}

	data, err := json.MarshalIndent(m.config, "", "  ")
	if err != nil {
		return types.NewAppError(types.ErrConfig, "failed to marshal settings", err)
	}

	tmp := m.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return types.NewAppError(types.ErrConfig, "failed to write settings file", err)
	}
	if err := os.Rename(tmp, m.filePath); err != nil {
		return types.NewAppError(types.ErrConfig, "failed to replace settings file", err)
	}
	return nil
}

// GetFilePath returns the settings file path.
func (m *Manager) GetFilePath() string {
	return m.filePath
}

// GetConfig returns a copy of the current configuration.
func (m *Manager) GetConfig() types.Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.config == nil {
		return types.DefaultConfig()
	}
	return *m.config
}

// SetConfig replaces the configuration and saves it.
func (m *Manager) SetConfig(config types.Config) error {
	m.mu.Lock()
	m.config = &config
	err := m.saveLocked()
	m.mu.Unlock()
	return err
}

// GetAPIKey returns the OpenAI API key. The stored value wins; the environment
// variable is the fallback and is never written back to disk.
func (m *Manager) GetAPIKey() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.config != nil && m.config.OpenAIAPIKey != "" {
		return m.config.OpenAIAPIKey
	}
	return os.Getenv(EnvOpenAIAPIKey)
}

// SetAPIKey sets the OpenAI API key and saves.
func (m *Manager) SetAPIKey(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.config.OpenAIAPIKey = key
	return m.saveLocked()
}

// HasAPIKey reports whether a key is available from settings or environment.
func (m *Manager) HasAPIKey() bool {
	return m.GetAPIKey() != ""
}

// GetBaseURL returns the OpenAI-compatible base URL, falling back to the
// environment variable and then the built-in default.
func (m *Manager) GetBaseURL() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.config != nil && m.config.OpenAIBaseURL != "" {
		return m.config.OpenAIBaseURL
	}
	if envURL := os.Getenv(EnvOpenAIBaseURL); envURL != "" {
		return envURL
	}
	return types.DefaultConfig().OpenAIBaseURL
}

// GetModel returns the model name to use.
func (m *Manager) GetModel() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.config != nil && m.config.OpenAIModel != "" {
		return m.config.OpenAIModel
	}
	return types.DefaultConfig().OpenAIModel
}

// GetConcurrency returns the parallel chapter translation count.
func (m *Manager) GetConcurrency() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.config != nil && m.config.Concurrency > 0 {
		return m.config.Concurrency
	}
	return types.DefaultConfig().Concurrency
}

// GetPresetsDir returns the prompt presets directory, or "" when unset.
func (m *Manager) GetPresetsDir() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.config == nil {
		return ""
	}
	return m.config.PresetsDir
}

// GetLogFile returns the configured log file path, or "" for console-only logging.
func (m *Manager) GetLogFile() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.config == nil {
		return ""
	}
	return m.config.LogFile
}

// TouchRecentProject records a project directory at the head of the recent
// list, deduplicating by path and capping the list. Save errors are ignored;
// recency bookkeeping must never fail an open.
func (m *Manager) TouchRecentProject(path, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.config == nil {
		def := types.DefaultConfig()
		m.config = &def
	}

	updated := []types.RecentProject{{
		Path:      path,
		Name:      name,
		Timestamp: time.Now().UnixMilli(),
	}}
	for _, rp := range m.config.RecentProjects {
		if rp.Path == path {
			continue
		}
		updated = append(updated, rp)
		if len(updated) == MaxRecentProjects {
			break
		}
	}
	m.config.RecentProjects = updated
	_ = m.saveLocked()
}

// GetRecentProjects returns the recently-opened project list, most recent first.
func (m *Manager) GetRecentProjects() []types.RecentProject {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.config == nil {
		return nil
	}
	out := make([]types.RecentProject, len(m.config.RecentProjects))
	copy(out, m.config.RecentProjects)
	return out
}
