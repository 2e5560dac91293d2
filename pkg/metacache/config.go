package metacache

// Config holds the metadata cache database settings
type Config struct {
	Path             string         `yaml:"path"`
	SampleRows       int            `yaml:"sampleRows" default:"2"`
	StalePathPattern string         `yaml:"stalePathPattern"`
	PreviewLookup    *PreviewLookup `yaml:"previewLookup,omitempty"`
}

// PreviewLookup names the table and columns that record a preview path per
// model path. Only needed for the recorded-preview cross-check.
type PreviewLookup struct {
	Table         string `yaml:"table"`
	KeyColumn     string `yaml:"keyColumn"`
	PreviewColumn string `yaml:"previewColumn"`
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.SampleRows < 0 {
		return ErrInvalidSampleRows
	}

	if c.PreviewLookup != nil {
		l := c.PreviewLookup
		if l.Table == "" || l.KeyColumn == "" || l.PreviewColumn == "" {
			return ErrIncompletePreviewLookup
		}
	}

	return nil
}

// Enabled reports whether a database path was configured
func (c *Config) Enabled() bool {
	return c.Path != ""
}
