package cmd

import (
	"github.com/ethpandaops/previewdiag/pkg/diagnose"
	"github.com/ethpandaops/previewdiag/pkg/preview"
	"github.com/ethpandaops/previewdiag/pkg/report"
	"github.com/spf13/cobra"
)

// resolveCmd resolves the preview for a single model
//
//nolint:gochecknoglobals // Cobra commands are typically global
var resolveCmd = &cobra.Command{
	Use:   "resolve MODEL_PATH",
	Short: "Resolve the preview image for one model file",
	Long: `Resolve the preview image for one model file with the direct strategy and,
unless --no-index is given, a fresh index of the model's directory. With
--trace every candidate is shown up to the first direct hit.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().Bool("no-index", false, "only use the direct strategy")
	resolveCmd.Flags().Bool("trace", false, "show every candidate checked")
	resolveCmd.Flags().String("format", string(report.FormatText), "output format (text, json)")
	resolveCmd.Flags().Bool("no-color", false, "disable coloured output")
}

func runResolve(cmd *cobra.Command, args []string) error {
	// Silence usage on error
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	if len(args) == 0 || args[0] == "" {
		return ErrModelPathRequired
	}

	formatFlag, _ := cmd.Flags().GetString("format")
	format, err := report.ParseFormat(formatFlag)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	modelPath, err := expandPath(args[0])
	if err != nil {
		return err
	}

	svc := diagnose.NewService(&cfg.Config, logger)

	noIndex, _ := cmd.Flags().GetBool("no-index")
	result, err := svc.Resolve(modelPath, !noIndex)
	if err != nil {
		return err
	}

	var trace *diagnose.TraceReport
	if withTrace, _ := cmd.Flags().GetBool("trace"); withTrace {
		trace = svc.Trace(modelPath)
	}

	out := cmd.OutOrStdout()

	if format == report.FormatJSON {
		return report.WriteJSON(out, struct {
			Result *preview.Result       `json:"result"`
			Trace  *diagnose.TraceReport `json:"trace,omitempty"`
		}{Result: result, Trace: trace})
	}

	noColor, _ := cmd.Flags().GetBool("no-color")
	engine, err := report.NewTemplateEngine(colorFor(out, noColor))
	if err != nil {
		return err
	}

	if err := engine.Resolution(out, result); err != nil {
		return err
	}

	if trace != nil {
		return engine.Trace(out, trace)
	}

	return nil
}
