package evalcmd

import (
	"bytes"
	"context"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/brain-tumor-detection/tumorscan/internal/config"
	"github.com/brain-tumor-detection/tumorscan/internal/evaluation"
)

func writeScan(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte("scan-"+filepath.Base(path)), 0644); err != nil {
		t.Fatalf("Failed to write scan: %v", err)
	}
}

func newDataset(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeScan(t, filepath.Join(root, "glioma", "g1.jpg"))
	writeScan(t, filepath.Join(root, "notumor", "n1.png"))
	return root
}

func gliomaServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"class":"glioma","confidence":0.9}`))
	}))
	t.Cleanup(server.Close)
	return server
}

func runEval(t *testing.T) string {
	t.Helper()
	server := gliomaServer(t)

	settings := config.Default()
	settings.BaseURL = server.URL

	outputDir := t.TempDir()
	opts := runOptions{
		datasetPath: newDataset(t),
		outputDir:   outputDir,
		concurrency: 2,
	}

	var out bytes.Buffer
	if err := executeRun(context.Background(), &out, opts, settings); err != nil {
		t.Fatalf("executeRun failed: %v", err)
	}
	if !strings.Contains(out.String(), "Evaluation Summary") {
		t.Errorf("Expected summary in output, got %q", out.String())
	}

	files, err := filepath.Glob(filepath.Join(outputDir, "*.yaml"))
	if err != nil || len(files) != 1 {
		t.Fatalf("Expected one results file, got %v (%v)", files, err)
	}
	return files[0]
}

func TestExecuteRun(t *testing.T) {
	path := runEval(t)

	if !strings.HasPrefix(filepath.Base(path), "http-") {
		t.Errorf("Expected results file named after backend, got %s", path)
	}

	record, err := evaluation.LoadFromYAML(path)
	if err != nil {
		t.Fatalf("LoadFromYAML failed: %v", err)
	}
	if record.Summary.SuccessCount != 2 {
		t.Errorf("Expected 2 successes, got %d", record.Summary.SuccessCount)
	}
	if record.Summary.CorrectCount != 1 {
		t.Errorf("Expected 1 correct, got %d", record.Summary.CorrectCount)
	}
	if record.Config.OnFailure != "surface" {
		t.Errorf("Expected surface mode recorded, got %q", record.Config.OnFailure)
	}
}

func TestExecuteReport(t *testing.T) {
	path := runEval(t)

	tests := []struct {
		format string
		want   string
	}{
		{"text", "Confusion Matrix"},
		{"json", `"total_items": 2`},
		{"csv", "Path,Expected,Predicted"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var out bytes.Buffer
			if err := executeReport(&out, path, tt.format); err != nil {
				t.Fatalf("executeReport failed: %v", err)
			}
			if !strings.Contains(out.String(), tt.want) {
				t.Errorf("Expected %q in output, got:\n%s", tt.want, out.String())
			}
		})
	}

	if err := executeReport(&bytes.Buffer{}, path, "xml"); err == nil {
		t.Error("Expected error for unsupported format")
	}
}

func TestCSVReportRows(t *testing.T) {
	path := runEval(t)

	var out bytes.Buffer
	if err := executeReport(&out, path, "csv"); err != nil {
		t.Fatalf("executeReport failed: %v", err)
	}

	records, err := csv.NewReader(&out).ReadAll()
	if err != nil {
		t.Fatalf("Invalid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Expected header plus 2 rows, got %d", len(records))
	}
	for _, row := range records[1:] {
		if row[2] != "glioma" {
			t.Errorf("Expected predicted glioma, got %q", row[2])
		}
	}
}

func TestExecuteManifest(t *testing.T) {
	root := newDataset(t)
	manifest := filepath.Join(root, "manifest.parquet")

	var out bytes.Buffer
	if err := executeManifest(&out, root, manifest); err != nil {
		t.Fatalf("executeManifest failed: %v", err)
	}
	if !strings.Contains(out.String(), "Scans:   2") {
		t.Errorf("Expected scan count, got %q", out.String())
	}

	dataset, err := evaluation.LoadDataset(manifest)
	if err != nil {
		t.Fatalf("LoadDataset(manifest) failed: %v", err)
	}
	if len(dataset.Items) != 2 {
		t.Errorf("Expected 2 items from manifest, got %d", len(dataset.Items))
	}
}

func TestReportCmdRequiresResults(t *testing.T) {
	cmd := NewReportCmd()
	cmd.SetArgs([]string{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	if err := cmd.Execute(); err == nil {
		t.Error("Expected error without --results")
	}
}

func TestRunCmdBackendFlags(t *testing.T) {
	cmd := NewRunCmd()
	for _, name := range []string{"backend", "url", "model", "timeout", "fallback"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("Expected --%s flag on eval run", name)
		}
	}
}
