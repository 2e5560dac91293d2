package cmd

import (
	"fmt"

	"github.com/ethpandaops/previewdiag/pkg/icon"
	"github.com/spf13/cobra"
)

// iconCmd renders the application icon
//
//nolint:gochecknoglobals // Cobra commands are typically global
var iconCmd = &cobra.Command{
	Use:   "icon",
	Short: "Generate the application icon as PNG and ICO",
	Long: `Render a square icon with a diagonal colour gradient and centred text,
then write it as PNG and as a PNG-compressed ICO.`,
	RunE: runIcon,
}

func init() {
	rootCmd.AddCommand(iconCmd)

	iconCmd.Flags().String("out-png", "", "PNG output path (overrides icon.outputPNG)")
	iconCmd.Flags().String("out-ico", "", "ICO output path (overrides icon.outputICO)")
	iconCmd.Flags().String("text", "", "icon text (overrides icon.text)")
	iconCmd.Flags().String("font", "", "TrueType/OpenType font path (overrides icon.fontPath)")
}

func runIcon(cmd *cobra.Command, _ []string) error {
	// Silence usage on error
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	overrides := map[string]*string{
		"out-png": &cfg.Icon.OutputPNG,
		"out-ico": &cfg.Icon.OutputICO,
		"text":    &cfg.Icon.Text,
		"font":    &cfg.Icon.FontPath,
	}
	for flag, target := range overrides {
		if cmd.Flags().Changed(flag) {
			*target, _ = cmd.Flags().GetString(flag)
		}
	}

	written, err := icon.NewGenerator(&cfg.Icon, logger).Generate()
	for _, path := range written {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Generated %s\n", path)
	}

	return err
}
