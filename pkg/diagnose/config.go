package diagnose

import (
	"errors"

	"github.com/ethpandaops/previewdiag/pkg/metacache"
	"github.com/ethpandaops/previewdiag/pkg/models"
)

// Configuration errors
var (
	ErrInvalidWorkers = errors.New("workers must be at least 1")
)

// Config holds the settings for a diagnose run
type Config struct {
	Models   models.PathConfig `yaml:"models"`
	CacheDB  metacache.Config  `yaml:"cacheDB"`
	Settings SettingsConfig    `yaml:"settings"`
	Trace    TraceConfig       `yaml:"trace"`
	Workers  int               `yaml:"workers" default:"4"`
}

// SettingsConfig points at the web UI settings file
type SettingsConfig struct {
	Path string   `yaml:"path"`
	Keys []string `yaml:"keys"`
}

// TraceConfig selects one model for a per-candidate trace
type TraceConfig struct {
	Model string `yaml:"model"`
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.Models.Validate(); err != nil {
		return err
	}

	if err := c.CacheDB.Validate(); err != nil {
		return err
	}

	if c.Workers < 1 {
		return ErrInvalidWorkers
	}

	return nil
}
