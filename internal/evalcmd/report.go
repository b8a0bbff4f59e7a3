package evalcmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/brain-tumor-detection/tumorscan/internal/classes"
	"github.com/brain-tumor-detection/tumorscan/internal/evaluation"
	"github.com/yildizm/go-termfmt"
)

func executeReport(out io.Writer, resultsPath, format string) error {
	record, err := evaluation.LoadFromYAML(resultsPath)
	if err != nil {
		return fmt.Errorf("failed to load results: %w", err)
	}

	switch format {
	case "text":
		return printTextReport(out, record)
	case "json":
		return printJSONReport(out, record)
	case "csv":
		return printCSVReport(out, record)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func printTextReport(out io.Writer, record *evaluation.RunRecord) error {
	fmt.Fprintln(out, "========================================")
	fmt.Fprintln(out, "Brain Tumor Classification Report")
	fmt.Fprintln(out, "========================================")
	fmt.Fprintf(out, "Backend:    %s\n", record.Config.Backend)
	fmt.Fprintf(out, "Endpoint:   %s\n", record.Config.Endpoint)
	fmt.Fprintf(out, "On failure: %s\n", record.Config.OnFailure)
	fmt.Fprintf(out, "Dataset:    %s\n", record.Config.DatasetPath)
	fmt.Fprintf(out, "Timestamp:  %s\n", record.Config.Timestamp)

	printSummary(out, record.Summary)
	printClassTree(out, record.Summary)
	printConfusion(out, record.Summary)

	fmt.Fprintln(out, "\nMisclassified and Failed Scans:")
	fmt.Fprintln(out, "========================================")

	shown := 0
	for _, result := range record.Results {
		if result.Correct {
			continue
		}
		shown++
		if result.Error != "" {
			fmt.Fprintf(out, "  ❌ %s: %s\n", result.Path, result.Error)
			continue
		}
		fmt.Fprintf(out, "  %s: expected %s, got %s (%s)\n",
			result.Path, result.Expected, result.Predicted, classes.FormatConfidence(result.Confidence))
	}
	if shown == 0 {
		fmt.Fprintln(out, "  none")
	}

	return nil
}

// printClassTree shows recall per class as a confidence bar
func printClassTree(out io.Writer, summary evaluation.Summary) {
	opts := termfmt.DefaultOptions()
	opts.Color = false
	opts.Emoji = false

	labels := classes.Labels()
	items := make([]termfmt.TreeItem, 0, len(labels))
	for i, label := range labels {
		stats := summary.PerClass[label]
		items = append(items, termfmt.TreeItem{
			Label: classes.Lookup(label).Name,
			Value: fmt.Sprintf("(%d/%d recalled)", stats.Correct, stats.Support),
			Children: []termfmt.TreeItem{
				{Label: termfmt.CreateConfidenceBar(stats.Recall, opts) + fmt.Sprintf(" precision %.2f, f1 %.2f", stats.Precision, stats.F1), Value: ""},
			},
			Last: i == len(labels)-1,
		})
	}

	fmt.Fprintln(out, "\nRecall by Class:")
	fmt.Fprintln(out, termfmt.TreeViewWithOptions(items, opts))
}

func printConfusion(out io.Writer, summary evaluation.Summary) {
	labels := classes.Labels()

	fmt.Fprintln(out, "\nConfusion Matrix (rows expected, columns predicted):")
	header := []string{fmt.Sprintf("%-12s", "")}
	for _, label := range labels {
		header = append(header, fmt.Sprintf("%11s", label))
	}
	fmt.Fprintln(out, strings.Join(header, ""))

	for _, expected := range labels {
		row := []string{fmt.Sprintf("%-12s", expected)}
		for _, predicted := range labels {
			row = append(row, fmt.Sprintf("%11d", summary.Confusion[expected][predicted]))
		}
		fmt.Fprintln(out, strings.Join(row, ""))
	}
}

func printJSONReport(out io.Writer, record *evaluation.RunRecord) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(record)
}

func printCSVReport(out io.Writer, record *evaluation.RunRecord) error {
	writer := csv.NewWriter(out)

	header := []string{"Path", "Expected", "Predicted", "Confidence", "Correct", "Processing Time (ms)", "Error"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, result := range record.Results {
		row := []string{
			result.Path,
			string(result.Expected),
			string(result.Predicted),
			fmt.Sprintf("%.2f", result.Confidence),
			fmt.Sprintf("%t", result.Correct),
			fmt.Sprintf("%d", result.ProcessingTime/time.Millisecond),
			result.Error,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
