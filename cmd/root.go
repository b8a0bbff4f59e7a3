package cmd

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "tumorscan",
		Short: "Brain MRI tumor classification client",
		Long: `Tumorscan uploads brain MRI scans to a classification service and shows the
predicted class (glioma, meningioma, no tumor, pituitary) with its confidence.

It serves a browser interface, classifies single scans from the command line,
and evaluates a backend against labeled datasets.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			if verbose {
				slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
					Level: slog.LevelDebug,
				})))
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")

	// Add subcommands
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newPredictCmd())
	cmd.AddCommand(newClassesCmd())
	cmd.AddCommand(newEvalCmd())

	return cmd
}
