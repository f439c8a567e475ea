package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds the user's persistent configuration preferences.
type Config struct {
	LLMProvider     string  `json:"llm_provider,omitempty"` // anthropic, openai, deepseek, ollama
	APIKey          string  `json:"api_key,omitempty"`
	Model           string  `json:"model,omitempty"`
	BaseURL         string  `json:"base_url,omitempty"` // optional override for API base URL
	MaxTurns        int     `json:"max_turns,omitempty"`
	Temperature     float32 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"max_output_tokens,omitempty"`
	DBPath          string  `json:"db_path,omitempty"` // session database location
}

// Manager handles loading and saving the configuration.
type Manager struct {
	configDir string
}

// NewManager creates a new configuration manager.
func NewManager() (*Manager, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user config dir: %w", err)
	}

	return &Manager{
		configDir: filepath.Join(configDir, "stitch"),
	}, nil
}

// GetConfigPath returns the absolute path to the config.json file.
func (m *Manager) GetConfigPath() string {
	return filepath.Join(m.configDir, "config.json")
}

// Load reads the configuration from disk.
// If the file does not exist, it returns an empty Config and no error.
func (m *Manager) Load() (*Config, error) {
	path := m.GetConfigPath()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &Config{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config json: %w", err)
	}

	return &cfg, nil
}

// Save writes the configuration to disk with restricted permissions (0600).
func (m *Manager) Save(cfg *Config) error {
	if err := os.MkdirAll(m.configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// API keys may be stored here, keep it owner-only
	if err := os.WriteFile(m.GetConfigPath(), data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Exists checks if the configuration file has been created.
func (m *Manager) Exists() bool {
	_, err := os.Stat(m.GetConfigPath())
	return !os.IsNotExist(err)
}

// ApplyEnv exports config fields as environment variables when they are
// not already set, so the provider factory can pick them up.
func (cfg *Config) ApplyEnv() {
	setIfEmpty := func(key, val string) {
		if val != "" && os.Getenv(key) == "" {
			os.Setenv(key, val)
		}
	}

	setIfEmpty("LLM_PROVIDER", cfg.LLMProvider)
	switch cfg.LLMProvider {
	case "anthropic":
		setIfEmpty("ANTHROPIC_API_KEY", cfg.APIKey)
		setIfEmpty("ANTHROPIC_MODEL", cfg.Model)
	case "openai":
		setIfEmpty("OPENAI_API_KEY", cfg.APIKey)
		setIfEmpty("OPENAI_MODEL", cfg.Model)
		setIfEmpty("OPENAI_BASE_URL", cfg.BaseURL)
	case "deepseek":
		setIfEmpty("DEEPSEEK_API_KEY", cfg.APIKey)
		setIfEmpty("DEEPSEEK_MODEL", cfg.Model)
	case "ollama":
		setIfEmpty("OLLAMA_MODEL", cfg.Model)
		setIfEmpty("OLLAMA_BASE_URL", cfg.BaseURL)
	}
}
