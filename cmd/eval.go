package cmd

import (
	"github.com/brain-tumor-detection/tumorscan/internal/evalcmd"
	"github.com/spf13/cobra"
)

func newEvalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Classification evaluation tools",
		Long: `Evaluation tools for measuring how well a prediction backend classifies
labeled brain MRI scans.

Supports inspecting datasets, freezing them into parquet manifests, running
evaluations and generating accuracy reports.`,
	}

	// Add eval subcommands
	cmd.AddCommand(evalcmd.NewManifestCmd())
	cmd.AddCommand(evalcmd.NewRunCmd())
	cmd.AddCommand(evalcmd.NewReportCmd())

	return cmd
}
