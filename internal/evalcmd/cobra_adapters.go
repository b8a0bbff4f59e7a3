package evalcmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRunCmd creates the run command
func NewRunCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a classification evaluation over a labeled dataset",
		Long: `Send every scan in a labeled dataset to the prediction backend and
compare the predicted class with the expected one.

The dataset is either a directory tree whose folders are named after the
classes (glioma, meningioma, notumor, pituitary) or a parquet manifest of
path,label rows. Results are written as YAML to the output directory.`,
		Example: `  # Evaluate a local model server on a directory tree
  tumorscan eval run --dataset ./Testing

  # Evaluate 200 scans from a manifest against Gemini
  tumorscan eval run --dataset ./testing.parquet --backend gemini --sample 200

  # Higher concurrency against a remote endpoint
  tumorscan eval run --dataset ./Testing --url http://model:5000 --concurrency 16`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.datasetPath == "" {
				return fmt.Errorf("--dataset is required")
			}
			if _, err := os.Stat(opts.datasetPath); os.IsNotExist(err) {
				return fmt.Errorf("dataset not found: %s", opts.datasetPath)
			}

			settings, err := opts.backend.Settings(cmd)
			if err != nil {
				return err
			}
			return executeRun(cmd.Context(), cmd.OutOrStdout(), opts, settings)
		},
	}

	cmd.Flags().StringVar(&opts.datasetPath, "dataset", "", "Dataset directory or parquet manifest (required)")
	opts.backend.Register(cmd)
	cmd.Flags().StringVar(&opts.outputDir, "output", "evals", "Output directory for results")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 4, "Number of concurrent predictions")
	cmd.Flags().IntVar(&opts.sampleSize, "sample", 0, "Number of scans to evaluate (0 for all)")

	_ = cmd.MarkFlagRequired("dataset")
	return cmd
}

// NewReportCmd creates the report command
func NewReportCmd() *cobra.Command {
	var resultsPath string
	var format string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate a report from evaluation results",
		Example: `  # Text report
  tumorscan eval report --results evals/http-2025-01-02_15-04-05.yaml

  # Per-scan CSV
  tumorscan eval report --results evals/gemini-1.5-flash-2025-01-02_15-04-05.yaml --format csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if resultsPath == "" {
				return fmt.Errorf("--results is required")
			}
			return executeReport(cmd.OutOrStdout(), resultsPath, format)
		},
	}

	cmd.Flags().StringVar(&resultsPath, "results", "", "Path to a results YAML file (required)")
	cmd.Flags().StringVar(&format, "format", "text", "Output format (text, json, csv)")

	_ = cmd.MarkFlagRequired("results")
	return cmd
}

// NewManifestCmd creates the manifest command
func NewManifestCmd() *cobra.Command {
	var datasetPath string
	var outputPath string

	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Inspect a dataset and optionally write it as a parquet manifest",
		Long: `Load a dataset directory or manifest and print how many scans carry each class.

With --output the items are written to a parquet manifest whose paths are
relative to the manifest's own directory.`,
		Example: `  # Count scans per class
  tumorscan eval manifest --dataset ./Testing

  # Freeze a directory tree into a manifest
  tumorscan eval manifest --dataset ./Testing --output ./Testing/manifest.parquet`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if datasetPath == "" {
				return fmt.Errorf("--dataset is required")
			}
			return executeManifest(cmd.OutOrStdout(), datasetPath, outputPath)
		},
	}

	cmd.Flags().StringVar(&datasetPath, "dataset", "", "Dataset directory or parquet manifest (required)")
	cmd.Flags().StringVar(&outputPath, "output", "", "Write a parquet manifest to this path")

	_ = cmd.MarkFlagRequired("dataset")
	return cmd
}
