package evalcmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/brain-tumor-detection/tumorscan/internal/classes"
	"github.com/brain-tumor-detection/tumorscan/internal/evaluation"
)

func executeManifest(out io.Writer, datasetPath, outputPath string) error {
	dataset, err := evaluation.LoadDataset(datasetPath)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	counts := dataset.CountByLabel()
	fmt.Fprintf(out, "Dataset: %s\n", dataset.Source)
	fmt.Fprintf(out, "Scans:   %d\n", len(dataset.Items))
	for _, label := range classes.Labels() {
		fmt.Fprintf(out, "  %-12s %d\n", label, counts[label])
	}

	if outputPath == "" {
		return nil
	}

	if err := evaluation.WriteManifest(outputPath, dataset.Items); err != nil {
		return err
	}
	slog.Info("Wrote manifest", "path", outputPath, "items", len(dataset.Items))
	fmt.Fprintf(out, "\nManifest written to: %s\n", outputPath)
	return nil
}
