package icon

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Generator renders the icon and writes the configured outputs
type Generator struct {
	config *Config
	log    logrus.FieldLogger
}

// NewGenerator creates a new icon generator
func NewGenerator(cfg *Config, log logrus.FieldLogger) *Generator {
	return &Generator{
		config: cfg,
		log:    log.WithField("component", "icon"),
	}
}

// Generate renders the icon and writes each configured output, returning the
// paths written in order (PNG first).
func (g *Generator) Generate() ([]string, error) {
	if err := g.config.Validate(); err != nil {
		return nil, err
	}

	img, err := g.Image()
	if err != nil {
		return nil, err
	}

	var written []string

	if g.config.OutputPNG != "" {
		if err := writeFile(g.config.OutputPNG, func(w io.Writer) error {
			return png.Encode(w, img)
		}); err != nil {
			return written, err
		}
		written = append(written, g.config.OutputPNG)
	}

	if g.config.OutputICO != "" {
		if err := writeFile(g.config.OutputICO, func(w io.Writer) error {
			return EncodeICO(w, img, g.config.ICOSizes)
		}); err != nil {
			return written, err
		}
		written = append(written, g.config.OutputICO)
	}

	g.log.WithField("outputs", written).Debug("Generated icon")

	return written, nil
}

// Image renders the icon without writing it
func (g *Generator) Image() (image.Image, error) {
	face, err := LoadFace(g.config.FontPath, g.config.FontSize, g.log)
	if err != nil {
		return nil, err
	}
	defer face.Close()

	return Render(g.config, face)
}

func writeFile(path string, encode func(io.Writer) error) error {
	f, err := os.Create(path) //nolint:gosec // User-provided output path
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := encode(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return f.Close()
}
