package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the complete configuration for toonvert
type Config struct {
	Encode EncodeConfig `yaml:"encode"`
	Decode DecodeConfig `yaml:"decode"`
	Output OutputConfig `yaml:"output"`
}

// EncodeConfig controls TOON encoding defaults
type EncodeConfig struct {
	Indent    int    `yaml:"indent"`
	Delimiter string `yaml:"delimiter"`
}

// DecodeConfig controls TOON decoding defaults
type DecodeConfig struct {
	Strict bool `yaml:"strict"`
}

// OutputConfig controls terminal output behavior
type OutputConfig struct {
	Color string `yaml:"color"` // auto, always, or never
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Encode: EncodeConfig{
			Indent:    2,
			Delimiter: ",",
		},
		Decode: DecodeConfig{
			Strict: true,
		},
		Output: OutputConfig{
			Color: "auto",
		},
	}
}

// LoadConfig loads configuration from a YAML file, layered over defaults
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := NewConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".toonvert.yml", ".toonvert.yaml", "toonvert.yml", "toonvert.yaml"}

	// Start from current directory
	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	// Search up the directory tree
	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		// Move up one directory
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root directory
			break
		}
		currentDir = parentDir
	}

	return ""
}

func (c *Config) validate() error {
	if c.Encode.Indent < 1 {
		return fmt.Errorf("encode.indent must be at least 1, got %d", c.Encode.Indent)
	}
	if c.Encode.Delimiter == "" {
		return fmt.Errorf("encode.delimiter must not be empty")
	}
	switch c.Output.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("output.color must be auto, always, or never, got %q", c.Output.Color)
	}
	return nil
}
