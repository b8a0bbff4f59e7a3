package evaluation

import (
	"time"

	"github.com/brain-tumor-detection/tumorscan/internal/classes"
)

// ClassStats holds per-label metrics
type ClassStats struct {
	Support   int     `json:"support" yaml:"support"`
	Predicted int     `json:"predicted" yaml:"predicted"`
	Correct   int     `json:"correct" yaml:"correct"`
	Precision float64 `json:"precision" yaml:"precision"`
	Recall    float64 `json:"recall" yaml:"recall"`
	F1        float64 `json:"f1" yaml:"f1"`
}

// Summary aggregates a run
type Summary struct {
	TotalItems        int                                     `json:"total_items" yaml:"totalitems"`
	SuccessCount      int                                     `json:"success_count" yaml:"successcount"`
	FailureCount      int                                     `json:"failure_count" yaml:"failurecount"`
	CorrectCount      int                                     `json:"correct_count" yaml:"correctcount"`
	Accuracy          float64                                 `json:"accuracy" yaml:"accuracy"`
	AverageConfidence float64                                 `json:"average_confidence" yaml:"averageconfidence"`
	AverageTime       time.Duration                           `json:"average_time" yaml:"averagetime"`
	PerClass          map[classes.Label]ClassStats            `json:"per_class" yaml:"perclass"`
	Confusion         map[classes.Label]map[classes.Label]int `json:"confusion" yaml:"confusion"`
}

// Summarize computes accuracy, per-class precision/recall and the confusion matrix.
// Accuracy is measured over successful predictions only.
func Summarize(results []ItemResult) Summary {
	summary := Summary{
		TotalItems: len(results),
		PerClass:   make(map[classes.Label]ClassStats),
		Confusion:  make(map[classes.Label]map[classes.Label]int),
	}

	for _, label := range classes.Labels() {
		summary.PerClass[label] = ClassStats{}
		summary.Confusion[label] = make(map[classes.Label]int)
	}

	var totalConfidence float64
	var totalTime time.Duration

	for _, r := range results {
		if r.Error != "" {
			summary.FailureCount++
			continue
		}
		summary.SuccessCount++
		totalConfidence += r.Confidence
		totalTime += r.ProcessingTime

		expected := summary.PerClass[r.Expected]
		expected.Support++
		if r.Correct {
			expected.Correct++
			summary.CorrectCount++
		}
		summary.PerClass[r.Expected] = expected

		predicted := summary.PerClass[r.Predicted]
		predicted.Predicted++
		summary.PerClass[r.Predicted] = predicted

		if summary.Confusion[r.Expected] == nil {
			summary.Confusion[r.Expected] = make(map[classes.Label]int)
		}
		summary.Confusion[r.Expected][r.Predicted]++
	}

	if summary.SuccessCount > 0 {
		summary.Accuracy = float64(summary.CorrectCount) / float64(summary.SuccessCount)
		summary.AverageConfidence = totalConfidence / float64(summary.SuccessCount)
		summary.AverageTime = totalTime / time.Duration(summary.SuccessCount)
	}

	for label, stats := range summary.PerClass {
		if stats.Predicted > 0 {
			stats.Precision = float64(stats.Correct) / float64(stats.Predicted)
		}
		if stats.Support > 0 {
			stats.Recall = float64(stats.Correct) / float64(stats.Support)
		}
		if stats.Precision+stats.Recall > 0 {
			stats.F1 = 2 * stats.Precision * stats.Recall / (stats.Precision + stats.Recall)
		}
		summary.PerClass[label] = stats
	}

	return summary
}
