package models

import "strings"

// PathConfig contains model directory configuration
type PathConfig struct {
	Dirs          []string `yaml:"dirs"`
	Extensions    []string `yaml:"extensions"`
	HashCacheDirs []string `yaml:"hashCacheDirs"`
}

// SetDefaults sets default extensions if not configured
func (p *PathConfig) SetDefaults() {
	if len(p.Extensions) == 0 {
		p.Extensions = []string{".safetensors", ".ckpt"}
	}

	for i, ext := range p.Extensions {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		p.Extensions[i] = ext
	}
}

// Validate checks that at least one model directory is configured
func (p *PathConfig) Validate() error {
	if len(p.Dirs) == 0 {
		return ErrNoModelDirs
	}

	return nil
}
