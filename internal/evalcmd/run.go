package evalcmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/brain-tumor-detection/tumorscan/internal/classes"
	"github.com/brain-tumor-detection/tumorscan/internal/config"
	"github.com/brain-tumor-detection/tumorscan/internal/evaluation"
)

type runOptions struct {
	datasetPath string
	backend     config.Flags
	outputDir   string
	concurrency int
	sampleSize  int
}

func executeRun(ctx context.Context, out io.Writer, opts runOptions, settings config.Settings) error {
	slog.Info("Starting evaluation run", "dataset", opts.datasetPath, "backend", settings.Backend, "endpoint", settings.Endpoint())

	predictor, err := settings.Predictor()
	if err != nil {
		return fmt.Errorf("failed to create predictor: %w", err)
	}

	slog.Info("Loading dataset...")
	dataset, err := evaluation.LoadDataset(opts.datasetPath)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}
	items := dataset.Sample(opts.sampleSize)
	slog.Info("Dataset loaded", "items", len(dataset.Items), "sampled", len(items))

	results := evaluation.Run(ctx, items, predictor, opts.concurrency)
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("evaluation interrupted: %w", err)
	}

	record := &evaluation.RunRecord{
		Config: evaluation.EvalConfig{
			Backend:     settings.Backend,
			Endpoint:    settings.Endpoint(),
			Model:       settings.ModelName(),
			OnFailure:   string(settings.OnFailure),
			DatasetPath: opts.datasetPath,
			SampleSize:  len(items),
			Concurrency: opts.concurrency,
			Timestamp:   time.Now().Format("2006-01-02_15-04-05"),
		},
		Summary: evaluation.Summarize(results),
		Results: results,
	}

	filename, err := evaluation.SaveToYAML(record, opts.outputDir)
	if err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}

	printSummary(out, record.Summary)

	fmt.Fprintf(out, "\nResults saved to: %s\n", filename)
	fmt.Fprintf(out, "\nGenerate detailed report with:\n")
	fmt.Fprintf(out, "  tumorscan eval report --results %s\n", filename)

	return nil
}

func printSummary(out io.Writer, summary evaluation.Summary) {
	fmt.Fprintln(out, "\n========================================")
	fmt.Fprintln(out, "Evaluation Summary")
	fmt.Fprintln(out, "========================================")
	fmt.Fprintf(out, "Total Scans:        %d\n", summary.TotalItems)
	fmt.Fprintf(out, "Successful:         %d\n", summary.SuccessCount)
	fmt.Fprintf(out, "Failed:             %d\n", summary.FailureCount)
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Accuracy:           %.2f%%\n", summary.Accuracy*100)
	fmt.Fprintf(out, "Avg Confidence:     %.2f%%\n", summary.AverageConfidence*100)
	fmt.Fprintf(out, "Avg Time:           %s\n", summary.AverageTime.Round(time.Millisecond))
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Per Class:            precision  recall     f1  support")

	for _, label := range classes.Labels() {
		stats := summary.PerClass[label]
		fmt.Fprintf(out, "  %-18s %9.2f %7.2f %6.2f %8d\n", label, stats.Precision, stats.Recall, stats.F1, stats.Support)
	}
	fmt.Fprintln(out, "========================================")
}
