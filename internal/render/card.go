// Package render draws prediction results for the terminal.
package render

import (
	"fmt"
	"strings"

	"github.com/brain-tumor-detection/tumorscan/internal/classes"
	"github.com/brain-tumor-detection/tumorscan/internal/prediction"
	"github.com/charmbracelet/lipgloss"
)

const barWidth = 30

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#64748b")).
			Padding(1, 2).
			Width(64)

	titleStyle = lipgloss.NewStyle().Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#94a3b8")).Width(12)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#94a3b8"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444")).Bold(true)
)

// Card renders a result with the class color, confidence bar and description
func Card(filename string, result prediction.Result) string {
	info := classes.Lookup(result.Label)
	color := lipgloss.Color(info.Color.Hex())
	percent := classes.Percent(result.Confidence)

	badge := lipgloss.NewStyle().Foreground(color).Bold(true).Render(info.Name)

	filled := percent * barWidth / 100
	bar := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled)) +
		mutedStyle.Render(strings.Repeat("░", barWidth-filled))

	var b strings.Builder
	b.WriteString(titleStyle.Render("Analysis Results"))
	b.WriteString("\n\n")
	if filename != "" {
		b.WriteString(labelStyle.Render("Scan") + filename + "\n")
	}
	b.WriteString(labelStyle.Render("Class") + badge + "\n")
	b.WriteString(labelStyle.Render("Confidence") + classes.FormatConfidence(result.Confidence) + "\n")
	b.WriteString(labelStyle.Render("") + bar + "\n\n")
	b.WriteString(mutedStyle.Render(info.Description))

	return cardStyle.Render(b.String())
}

// Failure renders a user-facing error message
func Failure(filename, message string) string {
	body := errorStyle.Render("Prediction failed") + "\n\n" + message
	if filename != "" {
		body = fmt.Sprintf("%s\n%s", body, mutedStyle.Render("Scan: "+filename))
	}
	return cardStyle.Render(body)
}

// Catalog renders every class with its color swatch
func Catalog() string {
	var b strings.Builder
	for i, label := range classes.Labels() {
		info := classes.Lookup(label)
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(info.Color.Hex())).Render("●")
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "%s %s %s\n", swatch, titleStyle.Render(info.Name), mutedStyle.Render("("+string(label)+")"))
		b.WriteString(lipgloss.NewStyle().Width(72).PaddingLeft(2).Render(info.Description))
	}
	return b.String()
}
