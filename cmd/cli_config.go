package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/creasty/defaults"
	"github.com/ethpandaops/previewdiag/pkg/diagnose"
	"github.com/ethpandaops/previewdiag/pkg/icon"
	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

var (
	// ErrModelPathRequired is returned when resolve is called without a model path
	ErrModelPathRequired = errors.New("model path is required")
)

// defaultHashCacheDirs live beside the metadata cache database
//
//nolint:gochecknoglobals // Default configuration
var defaultHashCacheDirs = []string{"hashes", "hashes-addnet"}

// CLIConfig represents the configuration for CLI commands
type CLIConfig struct {
	// Logging level
	Logging string `yaml:"logging" default:"info" validate:"oneof=panic fatal warn info debug trace"`

	// Diagnose configuration: model dirs, cache database, settings, trace
	diagnose.Config `yaml:",inline"`

	// Metrics textfile output (optional)
	Metrics struct {
		Textfile string `yaml:"textfile"`
	} `yaml:"metrics,omitempty"`

	// Icon generator configuration
	Icon icon.Config `yaml:"icon"`
}

// Validate validates the CLI configuration
func (c *CLIConfig) Validate() error {
	if err := c.Config.Validate(); err != nil {
		return fmt.Errorf("invalid diagnose config: %w", err)
	}

	return nil
}

// ExpandPaths resolves "~" and relative paths in every configured path
func (c *CLIConfig) ExpandPaths() error {
	var err error

	for i := range c.Models.Dirs {
		if c.Models.Dirs[i], err = expandPath(c.Models.Dirs[i]); err != nil {
			return err
		}
	}

	if c.CacheDB.Path, err = expandPath(c.CacheDB.Path); err != nil {
		return err
	}

	if len(c.Models.HashCacheDirs) == 0 && c.CacheDB.Path != "" {
		root := filepath.Dir(c.CacheDB.Path)
		for _, name := range defaultHashCacheDirs {
			c.Models.HashCacheDirs = append(c.Models.HashCacheDirs, filepath.Join(root, name))
		}
	}

	for i := range c.Models.HashCacheDirs {
		if c.Models.HashCacheDirs[i], err = expandPath(c.Models.HashCacheDirs[i]); err != nil {
			return err
		}
	}

	paths := []*string{
		&c.Settings.Path,
		&c.Trace.Model,
		&c.Metrics.Textfile,
		&c.Icon.FontPath,
	}
	for _, p := range paths {
		if *p, err = expandPath(*p); err != nil {
			return err
		}
	}

	return nil
}

func expandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("failed to expand %s: %w", path, err)
	}

	return filepath.Abs(expanded)
}

// LoadCLIConfig loads CLI configuration from a YAML file
func LoadCLIConfig(path string) (*CLIConfig, error) {
	if path == "" {
		path = "config.yaml"
	}

	config := &CLIConfig{}

	if err := defaults.Set(config); err != nil {
		return nil, err
	}

	// Try to read the file, but allow it to not exist
	yamlFile, err := os.ReadFile(path) //nolint:gosec // User-provided config file path
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, use defaults
			return finalise(config)
		}
		return nil, err
	}

	if err := yaml.Unmarshal(yamlFile, config); err != nil {
		return nil, err
	}

	return finalise(config)
}

func finalise(config *CLIConfig) (*CLIConfig, error) {
	config.Models.SetDefaults()
	config.Icon.SetDefaults()

	if err := config.ExpandPaths(); err != nil {
		return nil, err
	}

	return config, nil
}
