// Package session holds the upload/result state for a single user interaction.
//
// A Machine moves through Idle → ImageSelected → Pending → Resulted | Failed.
// Transition methods are the only writers; a request token bumped on every
// SelectImage, Begin and Reset lets Resolve discard responses that arrive
// after the user has moved on.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/brain-tumor-detection/tumorscan/internal/prediction"
)

// Phase is the visible stage of an upload session
type Phase string

const (
	Idle          Phase = "idle"
	ImageSelected Phase = "image_selected"
	Pending       Phase = "pending"
	Resulted      Phase = "resulted"
	Failed        Phase = "failed"
)

var (
	// ErrNoImageSelected is returned when submitting without an image
	ErrNoImageSelected = errors.New("no image selected")

	// ErrAlreadyPending is returned when a submission is already in flight
	ErrAlreadyPending = errors.New("prediction already in progress")

	// ErrInvalidTransition is returned when submitting while a result is displayed
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrStaleResponse is returned by Submit when the session moved on before the response arrived
	ErrStaleResponse = errors.New("response discarded: session changed while pending")
)

// ErrorMessage is shown in a Failed session whatever the underlying cause
const ErrorMessage = "An error occurred during prediction. Please try again."

// Snapshot is a copy of the session state for rendering
type Snapshot struct {
	Phase      Phase
	Image      *prediction.Image
	PreviewRef string
	Pending    bool
	Result     *prediction.Result
	Err        string
}

// Ticket identifies one submission
type Ticket struct {
	token uint64
	Image prediction.Image
}

// Machine is the upload/result state machine. The zero value is an Idle session.
type Machine struct {
	mu    sync.Mutex
	state Snapshot
	token uint64
}

// New returns an Idle session
func New() *Machine {
	return &Machine{}
}

// Snapshot returns the current state
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Machine) snapshotLocked() Snapshot {
	s := m.state
	if s.Phase == "" {
		s.Phase = Idle
	}
	if s.Image != nil {
		img := *s.Image
		s.Image = &img
	}
	if s.Result != nil {
		r := *s.Result
		s.Result = &r
	}
	return s
}

// SelectImage stores a new image from any state, clearing any result, error
// or pending request.
func (m *Machine) SelectImage(img prediction.Image, previewRef string) error {
	if len(img.Data) == 0 {
		return prediction.ErrEmptyImage
	}

	data := make([]byte, len(img.Data))
	copy(data, img.Data)
	img.Data = data

	m.mu.Lock()
	defer m.mu.Unlock()

	m.token++
	m.state = Snapshot{
		Phase:      ImageSelected,
		Image:      &img,
		PreviewRef: previewRef,
	}

	slog.Debug("Image selected", "filename", img.Filename, "bytes", len(img.Data))
	return nil
}

// Begin marks the session pending and returns the ticket to resolve it with.
// It is valid from ImageSelected and Failed only.
func (m *Machine) Begin() (Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.phaseLocked() {
	case Idle:
		return Ticket{}, ErrNoImageSelected
	case Pending:
		return Ticket{}, ErrAlreadyPending
	case Resulted:
		return Ticket{}, ErrInvalidTransition
	}

	if m.state.Image == nil {
		return Ticket{}, ErrNoImageSelected
	}

	m.token++
	m.state.Phase = Pending
	m.state.Pending = true
	m.state.Err = ""

	return Ticket{token: m.token, Image: *m.state.Image}, nil
}

// Resolve applies the outcome of a submission. It reports false, leaving the
// state untouched, when the ticket no longer matches the session.
func (m *Machine) Resolve(t Ticket, result prediction.Result, err error) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if t.token != m.token || m.phaseLocked() != Pending {
		slog.Debug("Discarding stale prediction response")
		return false
	}

	m.state.Pending = false
	if err != nil {
		m.state.Phase = Failed
		m.state.Result = nil
		m.state.Err = ErrorMessage
		return true
	}

	m.state.Phase = Resulted
	m.state.Err = ""
	m.state.Result = &result
	return true
}

// Submit runs a prediction for the selected image and applies its outcome.
// The predictor is called without holding the session lock.
func (m *Machine) Submit(ctx context.Context, p prediction.Predictor) error {
	ticket, err := m.Begin()
	if err != nil {
		return err
	}

	result, err := p.Predict(ctx, ticket.Image)
	if err != nil {
		slog.Error("Prediction error", "err", err)
	}

	if !m.Resolve(ticket, result, err) {
		return ErrStaleResponse
	}
	return err
}

// Reset clears every field and returns to Idle. Any in-flight response is discarded.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.token++
	m.state = Snapshot{Phase: Idle}
}

// Phase returns the current phase
func (m *Machine) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phaseLocked()
}

func (m *Machine) phaseLocked() Phase {
	if m.state.Phase == "" {
		return Idle
	}
	return m.state.Phase
}
