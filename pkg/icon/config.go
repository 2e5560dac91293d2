// Package icon rasterises an application icon: a diagonal colour gradient
// with centred text, written as PNG and ICO.
package icon

import (
	"errors"
	"fmt"
)

// Configuration errors
var (
	ErrInvalidSize     = errors.New("icon size must be positive")
	ErrInvalidFontSize = errors.New("font size must be positive")
	ErrInvalidICOSize  = errors.New("ico sizes must be between 1 and 256")
	ErrNoOutput        = errors.New("at least one of outputPNG or outputICO is required")
)

// Config controls icon rendering and output
type Config struct {
	Size       int     `yaml:"size" default:"256"`
	StartColor string  `yaml:"startColor" default:"#4158D0"`
	EndColor   string  `yaml:"endColor" default:"#C850C0"`
	TextColor  string  `yaml:"textColor" default:"white"`
	Text       string  `yaml:"text" default:"SD"`
	FontPath   string  `yaml:"fontPath"`
	FontSize   float64 `yaml:"fontSize" default:"160"`
	OutputPNG  string  `yaml:"outputPNG" default:"sd_icon.png"`
	OutputICO  string  `yaml:"outputICO" default:"sd_icon.ico"`
	ICOSizes   []int   `yaml:"icoSizes"`
}

// SetDefaults fills values that struct tags cannot express
func (c *Config) SetDefaults() {
	if len(c.ICOSizes) == 0 {
		c.ICOSizes = []int{256}
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Size <= 0 {
		return ErrInvalidSize
	}

	if c.FontSize <= 0 {
		return ErrInvalidFontSize
	}

	if c.OutputPNG == "" && c.OutputICO == "" {
		return ErrNoOutput
	}

	for _, s := range c.ICOSizes {
		if s < 1 || s > 256 {
			return fmt.Errorf("%w: %d", ErrInvalidICOSize, s)
		}
	}

	for _, col := range []string{c.StartColor, c.EndColor, c.TextColor} {
		if _, err := ParseColor(col); err != nil {
			return err
		}
	}

	return nil
}
