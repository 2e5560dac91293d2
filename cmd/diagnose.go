package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/ethpandaops/previewdiag/pkg/diagnose"
	"github.com/ethpandaops/previewdiag/pkg/observability"
	"github.com/ethpandaops/previewdiag/pkg/report"
	"github.com/spf13/cobra"
)

// diagnoseCmd runs every diagnostic and prints the report
//
//nolint:gochecknoglobals // Cobra commands are typically global
var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Run every preview diagnostic and print a report",
	Long: `Scan each configured model directory, resolve every model's preview with
both the direct and cached strategies, and report missing previews,
disagreements, metadata cache contents, hash caches, stale paths and the
relevant web UI settings.`,
	RunE: runDiagnose,
}

func init() {
	rootCmd.AddCommand(diagnoseCmd)

	diagnoseCmd.Flags().String("format", string(report.FormatText), "output format (text, json)")
	diagnoseCmd.Flags().Bool("no-color", false, "disable coloured output")
	diagnoseCmd.Flags().String("metrics-textfile", "", "write Prometheus metrics to this textfile collector path")
	diagnoseCmd.Flags().String("trace", "", "trace candidate resolution for this model path")
}

func runDiagnose(cmd *cobra.Command, _ []string) error {
	// Silence usage on error
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	formatFlag, _ := cmd.Flags().GetString("format")
	format, err := report.ParseFormat(formatFlag)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if trace, _ := cmd.Flags().GetString("trace"); trace != "" {
		if cfg.Trace.Model, err = expandPath(trace); err != nil {
			return err
		}
	}

	if textfile, _ := cmd.Flags().GetString("metrics-textfile"); textfile != "" {
		if cfg.Metrics.Textfile, err = expandPath(textfile); err != nil {
			return err
		}
	}

	if validationErr := cfg.Validate(); validationErr != nil {
		return validationErr
	}

	svc := diagnose.NewService(&cfg.Config, logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	result, err := svc.Run(ctx)
	if err != nil {
		return fmt.Errorf("diagnose run failed: %w", err)
	}

	if cfg.Metrics.Textfile != "" {
		if err := observability.WriteTextfile(cfg.Metrics.Textfile, nil, logger); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()

	if format == report.FormatJSON {
		return report.WriteJSON(out, result)
	}

	noColor, _ := cmd.Flags().GetBool("no-color")
	engine, err := report.NewTemplateEngine(colorFor(out, noColor))
	if err != nil {
		return err
	}

	return engine.Report(out, result)
}

// colorFor enables colour only when writing to a terminal
func colorFor(out io.Writer, noColor bool) bool {
	f, ok := out.(*os.File)
	if !ok {
		return false
	}

	return report.ColorEnabled(f, noColor)
}
