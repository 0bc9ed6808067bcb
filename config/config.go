package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultModel is the multimodal model used when nothing else is configured
	DefaultModel = "gpt-4o-mini"

	// DefaultMaxTokens is the response token budget sent with every request
	DefaultMaxTokens = 300

	// DefaultDatabasePath is the SQLite file the conversation log lives in
	DefaultDatabasePath = "conversations.db"
)

// Config represents the application configuration
type Config struct {
	Model        string `json:"model"`
	MaxTokens    int    `json:"max_tokens"`
	DatabasePath string `json:"database_path"`
}

// Manager handles configuration persistence
type Manager struct {
	configPath string
	config     *Config
}

// NewManager creates a new config manager
func NewManager() (*Manager, error) {
	// Get user's home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	// Create config directory if it doesn't exist
	configDir := filepath.Join(homeDir, ".vision-chat")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath := filepath.Join(configDir, "config.json")

	m := &Manager{
		configPath: configPath,
		config:     &Config{},
	}

	// Load existing config if it exists
	if err := m.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return m, nil
}

// Load reads the configuration from disk
func (m *Manager) Load() error {
	data, err := os.ReadFile(m.configPath)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, m.config); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	return nil
}

// Save writes the configuration to disk
func (m *Manager) Save() error {
	data, err := json.MarshalIndent(m.config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(m.configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// GetModel returns the configured model
func (m *Manager) GetModel() string {
	if m.config.Model == "" {
		return DefaultModel
	}
	return m.config.Model
}

// GetMaxTokens returns the configured response token budget
func (m *Manager) GetMaxTokens() int {
	if m.config.MaxTokens == 0 {
		return DefaultMaxTokens
	}
	return m.config.MaxTokens
}

// GetDatabasePath returns the configured database path
func (m *Manager) GetDatabasePath() string {
	if m.config.DatabasePath == "" {
		return DefaultDatabasePath
	}
	return m.config.DatabasePath
}

// SetDefaults updates the stored model and token budget
func (m *Manager) SetDefaults(model string, maxTokens int) error {
	m.config.Model = model
	m.config.MaxTokens = maxTokens
	return m.Save()
}
