package evaluation

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/brain-tumor-detection/tumorscan/internal/classes"
	"github.com/parquet-go/parquet-go"
)

// DatasetItem is one labeled scan
type DatasetItem struct {
	Path  string        `json:"path" yaml:"path"`
	Label classes.Label `json:"label" yaml:"label"`
}

// manifestRow is the on-disk parquet schema of a dataset manifest
type manifestRow struct {
	Path  string `parquet:"path"`
	Label string `parquet:"label"`
}

// Dataset is a collection of labeled scans
type Dataset struct {
	Source string        `json:"source"`
	Items  []DatasetItem `json:"items"`
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// LoadDataset loads either a directory tree or a parquet manifest.
//
// In a directory tree every image is labeled by its nearest ancestor directory
// named after a label, so both glioma/x.jpg and Training/glioma/x.jpg work.
// A manifest holds path,label rows; relative paths resolve against the
// manifest's directory.
func LoadDataset(path string) (*Dataset, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}

	var dataset *Dataset
	switch {
	case info.IsDir():
		dataset, err = loadDirectory(path)
	case strings.EqualFold(filepath.Ext(path), ".parquet"):
		dataset, err = loadManifest(path)
	default:
		return nil, fmt.Errorf("unsupported dataset %s (expected a directory or .parquet manifest)", path)
	}
	if err != nil {
		return nil, err
	}

	sort.Slice(dataset.Items, func(i, j int) bool {
		return dataset.Items[i].Path < dataset.Items[j].Path
	})
	return dataset, nil
}

func loadDirectory(root string) (*Dataset, error) {
	dataset := &Dataset{Source: root, Items: []DatasetItem{}}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !imageExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		label, ok := labelFromPath(root, path)
		if !ok {
			slog.Debug("Skipping unlabeled image", "path", path)
			return nil
		}

		dataset.Items = append(dataset.Items, DatasetItem{Path: path, Label: label})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk dataset directory: %w", err)
	}

	slog.Debug("Loaded dataset directory", "root", root, "items", len(dataset.Items))
	return dataset, nil
}

func labelFromPath(root, path string) (classes.Label, bool) {
	rel, err := filepath.Rel(root, filepath.Dir(path))
	if err != nil || rel == "." {
		return "", false
	}

	parts := strings.Split(filepath.ToSlash(rel), "/")
	for i := len(parts) - 1; i >= 0; i-- {
		if label, err := classes.Parse(strings.ToLower(parts[i])); err == nil {
			return label, true
		}
	}
	return "", false
}

func loadManifest(path string) (*Dataset, error) {
	slog.Debug("Opening Parquet manifest", "path", path)

	rows, err := parquet.ReadFile[manifestRow](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet manifest: %w", err)
	}

	base := filepath.Dir(path)
	dataset := &Dataset{Source: path, Items: make([]DatasetItem, 0, len(rows))}

	for i, row := range rows {
		label, err := classes.Parse(row.Label)
		if err != nil {
			return nil, fmt.Errorf("manifest row %d: %w", i+1, err)
		}
		if row.Path == "" {
			return nil, fmt.Errorf("manifest row %d: path is empty", i+1)
		}

		itemPath := row.Path
		if !filepath.IsAbs(itemPath) {
			itemPath = filepath.Join(base, itemPath)
		}
		dataset.Items = append(dataset.Items, DatasetItem{Path: itemPath, Label: label})
	}

	slog.Debug("Finished reading Parquet manifest", "total_rows", len(rows))
	return dataset, nil
}

// WriteManifest stores dataset items as a parquet manifest.
// Paths under the manifest's directory are written relative to it.
func WriteManifest(path string, items []DatasetItem) error {
	if len(items) == 0 {
		return errors.New("no dataset items to write")
	}

	base, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return fmt.Errorf("failed to resolve manifest directory: %w", err)
	}

	rows := make([]manifestRow, 0, len(items))
	for _, item := range items {
		itemPath := item.Path
		if abs, err := filepath.Abs(itemPath); err == nil {
			if rel, err := filepath.Rel(base, abs); err == nil && !strings.HasPrefix(rel, "..") {
				itemPath = rel
			}
		}
		rows = append(rows, manifestRow{Path: filepath.ToSlash(itemPath), Label: string(item.Label)})
	}

	if err := parquet.WriteFile(path, rows); err != nil {
		return fmt.Errorf("failed to write parquet manifest: %w", err)
	}
	return nil
}

// Sample returns at most n items spread evenly across the dataset; n <= 0 keeps all
func (d *Dataset) Sample(n int) []DatasetItem {
	if n <= 0 || n >= len(d.Items) {
		return d.Items
	}

	out := make([]DatasetItem, 0, n)
	step := float64(len(d.Items)) / float64(n)
	for i := 0; i < n; i++ {
		out = append(out, d.Items[int(float64(i)*step)])
	}
	return out
}

// CountByLabel returns how many items carry each label
func (d *Dataset) CountByLabel() map[classes.Label]int {
	counts := make(map[classes.Label]int)
	for _, item := range d.Items {
		counts[item.Label]++
	}
	return counts
}
