package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sketchfs/sketchfs/internal/util"
)

// Default configuration constants. See [Config] for field descriptions.
const (
	// DefaultEntryPath is the conventional root component preview assembly
	// starts from when no explicit entry is requested.
	DefaultEntryPath = "/App.jsx"
)

// DefaultExtensions is the candidate extension priority used when resolving
// extensionless import specifiers.
var DefaultExtensions = []string{".tsx", ".jsx", ".ts", ".js", ".css"}

// DefaultExternals maps bare import specifiers to the module URLs the preview
// document is allowed to load. Anything outside this table is a build error.
var DefaultExternals = map[string]string{
	"react":             "https://esm.sh/react@18.3.1",
	"react/jsx-runtime": "https://esm.sh/react@18.3.1/jsx-runtime",
	"react-dom":         "https://esm.sh/react-dom@18.3.1",
	"react-dom/client":  "https://esm.sh/react-dom@18.3.1/client",
}

// Config contains runtime configuration values for a sketchfs session.
type Config struct {
	LogLvl     util.LogLevel     // Minimum log level (Default Info)
	EntryPath  string            // Preview entry point (Default "/App.jsx")
	Extensions []string          // Import resolution extension priority
	Externals  map[string]string // Bare specifier -> whitelisted module URL
}

// ConfigOverride uses pointer fields to distinguish between unset and zero values
// when loading partial configuration. See [Config] for field descriptions.
// Externals entries are merged key-by-key onto the defaults so a file can add or
// repoint a single library without restating the whole table.
type ConfigOverride struct {
	LogLvl     *util.LogLevel    `yaml:"log_level,omitempty" json:"log_level,omitempty"`
	EntryPath  *string           `yaml:"entry_path,omitempty" json:"entry_path,omitempty"`
	Extensions []string          `yaml:"extensions,omitempty" json:"extensions,omitempty"`
	Externals  map[string]string `yaml:"externals,omitempty" json:"externals,omitempty"`
}

// NewDefaultConfig creates a new Config with all default values.
func NewDefaultConfig() *Config {
	externals := make(map[string]string, len(DefaultExternals))
	for k, v := range DefaultExternals {
		externals[k] = v
	}
	return &Config{
		LogLvl:     util.InfoLevel,
		EntryPath:  DefaultEntryPath,
		Extensions: append([]string(nil), DefaultExtensions...),
		Externals:  externals,
	}
}

// NewConfig creates a Config from defaults with the given override applied.
// A nil override returns the defaults unchanged.
func NewConfig(override *ConfigOverride) *Config {
	cfg := NewDefaultConfig()
	if override != nil {
		cfg.Merge(override)
	}
	return cfg
}

// Merge applies non-nil values from override onto this Config.
// This allows partial configuration updates while preserving existing values.
func (c *Config) Merge(override *ConfigOverride) {
	if override.LogLvl != nil {
		c.LogLvl = *override.LogLvl
	}
	if override.EntryPath != nil {
		c.EntryPath = *override.EntryPath
	}
	if override.Extensions != nil {
		c.Extensions = append([]string(nil), override.Extensions...)
	}
	for spec, url := range override.Externals {
		c.Externals[spec] = url
	}
}

// LoadConfigOverrideFile loads configuration overrides from a file without merging.
// Supports both YAML (.yaml, .yml) and JSON (.json) formats.
func LoadConfigOverrideFile(path string) (*ConfigOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var override ConfigOverride

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown config file extension: %s", path)
	}

	return &override, nil
}

// NewConfigFromFile creates a new Config by merging file overrides with defaults.
// This is a convenience function that combines NewDefaultConfig, LoadConfigOverrideFile, and Merge.
func NewConfigFromFile(path string) (*Config, error) {
	cfg := NewDefaultConfig()
	override, err := LoadConfigOverrideFile(path)
	if err != nil {
		return nil, err
	}
	cfg.Merge(override)
	return cfg, nil
}
