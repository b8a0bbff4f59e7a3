package evaluation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EvalConfig records how a run was configured
type EvalConfig struct {
	Backend     string `json:"backend" yaml:"backend"`
	Endpoint    string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	Model       string `json:"model,omitempty" yaml:"model,omitempty"`
	OnFailure   string `json:"on_failure" yaml:"onfailure"`
	DatasetPath string `json:"dataset_path" yaml:"datasetpath"`
	SampleSize  int    `json:"sample_size" yaml:"samplesize"`
	Concurrency int    `json:"concurrency" yaml:"concurrency"`
	Timestamp   string `json:"timestamp" yaml:"timestamp"`
}

// RunRecord is the complete YAML results file of one run
type RunRecord struct {
	Config  EvalConfig   `json:"config" yaml:"config"`
	Summary Summary      `json:"summary" yaml:"summary"`
	Results []ItemResult `json:"results" yaml:"results"`
}

// SaveToYAML writes the record to <outputDir>/<backend>-<timestamp>.yaml and returns the path
func SaveToYAML(record *RunRecord, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create evals directory: %w", err)
	}

	if record.Config.Timestamp == "" {
		record.Config.Timestamp = time.Now().Format("2006-01-02_15-04-05")
	}

	name := record.Config.Backend
	if record.Config.Model != "" {
		name = record.Config.Model
	}
	name = strings.NewReplacer("/", "_", ":", "_").Replace(name)
	filename := filepath.Join(outputDir, fmt.Sprintf("%s-%s.yaml", name, record.Config.Timestamp))

	data, err := yaml.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write YAML file: %w", err)
	}

	return filename, nil
}

// LoadFromYAML reads a results file written by SaveToYAML
func LoadFromYAML(path string) (*RunRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read results file: %w", err)
	}

	var record RunRecord
	if err := yaml.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to parse results file: %w", err)
	}
	return &record, nil
}
