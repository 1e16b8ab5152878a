// Package config loads DevDiary configuration from an optional YAML file
// (~/.devdiary.yaml by default) with DEVDIARY_* environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Scanning ScanningConfig `mapstructure:"scanning"`
	Ollama   OllamaConfig   `mapstructure:"ollama"`
	Cache    CacheConfig    `mapstructure:"cache"`
	History  HistoryConfig  `mapstructure:"history"`
	Export   ExportConfig   `mapstructure:"export"`
	Server   ServerConfig   `mapstructure:"server"`
}

// ScanningConfig controls repository discovery and extraction.
type ScanningConfig struct {
	RootPath         string   `mapstructure:"root_path"`
	ExcludedPatterns []string `mapstructure:"excluded_patterns"`
	MaxRepos         int      `mapstructure:"max_repos"` // 0 = unlimited
}

// OllamaConfig controls the model backend.
type OllamaConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Model    string `mapstructure:"model"`
	Endpoint string `mapstructure:"endpoint"`
	Token    string `mapstructure:"token"` // Bearer token for Ollama Cloud (empty = local)
}

// CacheConfig controls the classification cache.
type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// HistoryConfig controls the scan history store.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// ExportConfig controls export rendering.
type ExportConfig struct {
	DefaultFormat string `mapstructure:"default_format"`
	Directory     string `mapstructure:"directory"`
}

// ServerConfig controls serve mode.
type ServerConfig struct {
	Port string `mapstructure:"port"`
}

// Load reads configuration from the given file (empty = ~/.devdiary.yaml if
// present) layered over defaults, with DEVDIARY_* environment overrides
// (e.g. DEVDIARY_OLLAMA_MODEL, DEVDIARY_SCANNING_ROOT_PATH).
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("DEVDIARY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName(".devdiary")
		v.SetConfigType("yaml")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		// A missing default config file is fine; defaults apply.
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	home, _ := os.UserHomeDir()

	v.SetDefault("scanning.root_path", filepath.Join(home, "dev"))
	v.SetDefault("scanning.excluded_patterns", []string{
		"venv/", ".venv/", "__pycache__",
		".git/", "env/", "site-packages", "/bin/", "/lib/", "dist-info",
	})
	v.SetDefault("scanning.max_repos", 0)

	v.SetDefault("ollama.enabled", true)
	v.SetDefault("ollama.model", "llama3")
	v.SetDefault("ollama.endpoint", "http://localhost:11434")
	v.SetDefault("ollama.token", "")

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.path", filepath.Join(home, ".devdiary_cache.json"))

	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", filepath.Join(home, ".devdiary_history.db"))

	v.SetDefault("export.default_format", "markdown")
	v.SetDefault("export.directory", filepath.Join(home, "devdiary-exports"))

	v.SetDefault("server.port", "3001")
}

// ExpandedRootPath resolves a leading ~ in the scanning root.
func (c *Config) ExpandedRootPath() string {
	root := c.Scanning.RootPath
	if strings.HasPrefix(root, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			root = filepath.Join(home, strings.TrimPrefix(root, "~"))
		}
	}
	return root
}
