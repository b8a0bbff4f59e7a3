package models

import (
	"time"

	"github.com/brain-tumor-detection/tumorscan/internal/classes"
	"github.com/brain-tumor-detection/tumorscan/internal/session"
)

// ClassInfo is the JSON form of a catalog entry
type ClassInfo struct {
	Label       classes.Label `json:"label" yaml:"label"`
	Name        string        `json:"name" yaml:"name"`
	Description string        `json:"description" yaml:"description"`
	Color       string        `json:"color" yaml:"color"`
	Hex         string        `json:"hex" yaml:"hex"`
}

// PredictionView is a result ready for display
type PredictionView struct {
	Class      ClassInfo `json:"class"`
	Confidence float64   `json:"confidence"`
	Percent    string    `json:"percent"`
}

// SessionView is the snapshot of an upload session sent to the browser
type SessionView struct {
	ID         string          `json:"id"`
	Phase      session.Phase   `json:"phase"`
	Filename   string          `json:"filename,omitempty"`
	PreviewURL string          `json:"preview_url,omitempty"`
	Pending    bool            `json:"pending"`
	Result     *PredictionView `json:"result,omitempty"`
	Error      string          `json:"error,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// NewClassInfo converts a catalog entry
func NewClassInfo(label classes.Label) ClassInfo {
	info := classes.Lookup(label)
	return ClassInfo{
		Label:       label,
		Name:        info.Name,
		Description: info.Description,
		Color:       info.Color.String(),
		Hex:         info.Color.Hex(),
	}
}

// Catalog returns every class in display order
func Catalog() []ClassInfo {
	labels := classes.Labels()
	out := make([]ClassInfo, 0, len(labels))
	for _, label := range labels {
		out = append(out, NewClassInfo(label))
	}
	return out
}

// NewSessionView renders a snapshot; previewURL is used only when an image is selected
func NewSessionView(id string, createdAt time.Time, s session.Snapshot, previewURL string) SessionView {
	view := SessionView{
		ID:        id,
		Phase:     s.Phase,
		Pending:   s.Pending,
		Error:     s.Err,
		CreatedAt: createdAt,
	}

	if s.Image != nil {
		view.Filename = s.Image.Filename
		view.PreviewURL = previewURL
	}

	if s.Result != nil {
		view.Result = &PredictionView{
			Class:      NewClassInfo(s.Result.Label),
			Confidence: s.Result.Confidence,
			Percent:    classes.FormatConfidence(s.Result.Confidence),
		}
	}

	return view
}
