package classes

import (
	"errors"
	"fmt"
	"math"
)

// Label is one of the fixed scan classification outcomes
type Label string

const (
	Glioma     Label = "glioma"
	Meningioma Label = "meningioma"
	NoTumor    Label = "notumor"
	Pituitary  Label = "pituitary"
)

// ErrUnknownLabel is returned when a string is not one of the known labels
var ErrUnknownLabel = errors.New("unknown scan label")

// RGB is a display color
type RGB struct {
	R, G, B uint8
}

// String renders the color as a CSS rgb() value
func (c RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
}

// Hex renders the color as #rrggbb
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Info holds display metadata for a label
type Info struct {
	Name        string
	Description string
	Color       RGB
}

var labels = []Label{Glioma, Meningioma, NoTumor, Pituitary}

var catalog = map[Label]Info{
	Glioma: {
		Name:        "Glioma",
		Description: "A type of tumor that occurs in the brain and spinal cord, beginning in glial cells that surround and support nerve cells.",
		Color:       RGB{239, 68, 68},
	},
	Meningioma: {
		Name:        "Meningioma",
		Description: "A tumor that forms on the membranes that cover the brain and spinal cord inside the skull. Most meningiomas are noncancerous.",
		Color:       RGB{249, 115, 22},
	},
	NoTumor: {
		Name:        "No Tumor",
		Description: "No tumor was detected in the scan. The brain tissue appears normal without any significant abnormalities.",
		Color:       RGB{34, 197, 94},
	},
	Pituitary: {
		Name:        "Pituitary Tumor",
		Description: "A growth that develops in the pituitary gland, which is located at the base of the brain. Most pituitary tumors are noncancerous.",
		Color:       RGB{59, 130, 246},
	},
}

// Labels returns every label in display order
func Labels() []Label {
	out := make([]Label, len(labels))
	copy(out, labels)
	return out
}

// Lookup returns the display metadata for a label.
// Every label returned by Labels resolves.
func Lookup(label Label) Info {
	return catalog[label]
}

// Valid reports whether the label is part of the closed set
func (l Label) Valid() bool {
	_, ok := catalog[l]
	return ok
}

// Parse converts a raw class string into a Label
func Parse(s string) (Label, error) {
	label := Label(s)
	if !label.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownLabel, s)
	}
	return label, nil
}

// Percent converts a confidence in [0,1] to a whole percent, rounding half up.
// The epsilon absorbs float noise so values such as 0.005 still round up.
func Percent(confidence float64) int {
	return int(math.Floor(confidence*100 + 0.5 + 1e-9))
}

// FormatConfidence renders a confidence as "85%"
func FormatConfidence(confidence float64) string {
	return fmt.Sprintf("%d%%", Percent(confidence))
}
