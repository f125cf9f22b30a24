package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	appName = "chores"

	// DefaultRefreshInterval is how often the daemon recomputes statuses.
	DefaultRefreshInterval = time.Hour
)

// Config represents the application configuration
type Config struct {
	CSVPath         string        `yaml:"csv_path"`
	HistoryPath     string        `yaml:"history_path"`
	SocketPath      string        `yaml:"socket_path"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	LogDir          string        `yaml:"log_dir"`
	KeyMappings     KeyMappings   `yaml:"key_mappings"`
	ColorScheme     ColorScheme   `yaml:"theme"`
}

// DataDir returns ~/.chores, or .chores when the home directory is unknown.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "." + appName
	}
	return filepath.Join(home, "."+appName)
}

// Default returns a config with every field set to its default.
func Default() *Config {
	config := &Config{
		KeyMappings: DefaultKeyMappings(),
		ColorScheme: DefaultColorScheme(),
	}
	config.applyDefaults()
	return config
}

// loadThemeFile loads and merges theme from CHORES_THEME_FILE environment variable
func loadThemeFile(config *Config) {
	themeFile := os.Getenv("CHORES_THEME_FILE")
	if themeFile == "" {
		return
	}

	themeData, err := os.ReadFile(themeFile)
	if err != nil {
		return
	}

	var themeConfig struct {
		Theme ColorScheme `yaml:"theme"`
	}

	if yaml.Unmarshal(themeData, &themeConfig) == nil {
		config.ColorScheme.MergeFrom(themeConfig.Theme)
	}
}

// applyEnv applies the CHORES_* path and interval overrides.
func applyEnv(config *Config) error {
	if v := os.Getenv("CHORES_CSV_PATH"); v != "" {
		config.CSVPath = v
	}
	if v := os.Getenv("CHORES_SOCKET_PATH"); v != "" {
		config.SocketPath = v
	}
	if v := os.Getenv("CHORES_REFRESH_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid CHORES_REFRESH_INTERVAL %q: %w", v, err)
		}
		if d <= 0 {
			return fmt.Errorf("invalid CHORES_REFRESH_INTERVAL %q: must be positive", v)
		}
		config.RefreshInterval = d
	}
	return nil
}

// Load loads config from the user's config directory
// Returns default config if file doesn't exist
func Load() (*Config, error) {
	configPath, err := FilePath()
	if err != nil {
		// Can't determine config path, defaults relative to the working directory
		config := &Config{}
		return finish(config, "")
	}

	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return finish(&Config{}, filepath.Dir(configPath))
	}
	if err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", configPath, err)
	}

	return finish(&config, filepath.Dir(configPath))
}

func finish(config *Config, configDir string) (*Config, error) {
	if err := applyEnv(config); err != nil {
		return nil, err
	}

	// Fill in any missing values with defaults
	config.applyDefaults()

	// Theme file wins over the config file
	loadThemeFile(config)

	config.CSVPath = resolvePath(config.CSVPath, configDir)
	config.HistoryPath = resolvePath(config.HistoryPath, configDir)
	config.SocketPath = resolvePath(config.SocketPath, configDir)
	config.LogDir = resolvePath(config.LogDir, configDir)

	return config, nil
}

// resolvePath expands a leading ~ and anchors relative paths at base.
func resolvePath(p, base string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	if !filepath.IsAbs(p) && base != "" {
		p = filepath.Join(base, p)
	}
	return p
}

// Save saves the config to the user's config directory
func (c *Config) Save() error {
	configPath, err := FilePath()
	if err != nil {
		return err
	}

	// Create config directory if it doesn't exist
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0o644)
}

// FilePath returns where Load reads and Save writes the config file
func FilePath() (string, error) {
	// Try XDG_CONFIG_HOME first
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.yaml"), nil
	}

	// Fall back to ~/.config
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".config", appName, "config.yaml"), nil
}

// applyDefaults fills in missing configuration with defaults
func (c *Config) applyDefaults() {
	dataDir := DataDir()
	if c.CSVPath == "" {
		c.CSVPath = filepath.Join(dataDir, "chores.csv")
	}
	if c.HistoryPath == "" {
		c.HistoryPath = filepath.Join(dataDir, "history.db")
	}
	if c.SocketPath == "" {
		c.SocketPath = filepath.Join(dataDir, "chores.sock")
	}
	if c.LogDir == "" {
		c.LogDir = filepath.Join(dataDir, "logs")
	}
	if c.RefreshInterval <= 0 {
		c.RefreshInterval = DefaultRefreshInterval
	}
	c.KeyMappings.applyDefaults()
	c.ColorScheme.ApplyDefaults()
}
