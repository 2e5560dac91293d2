// Package observability provides observability utilities
package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// WriteTextfile writes every registered metric to path in the text
// exposition format, for node_exporter's textfile collector. The write is
// atomic: the file is staged next to path and renamed into place.
func WriteTextfile(path string, gatherer prometheus.Gatherer, log logrus.FieldLogger) error {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	if err := prometheus.WriteToTextfile(path, gatherer); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}

	log.WithField("path", path).Info("Wrote metrics textfile")

	return nil
}
