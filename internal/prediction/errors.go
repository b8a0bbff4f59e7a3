package prediction

import (
	"errors"
	"fmt"
	"strings"
)

// Kind categorizes a prediction error
type Kind string

const (
	// KindPredictionFailed indicates the endpoint could not be reached or refused the request
	KindPredictionFailed Kind = "prediction_failed"

	// KindMalformedResponse indicates the endpoint answered with an unusable body
	KindMalformedResponse Kind = "malformed_response"
)

// UserMessage is shown to the user when a prediction fails
const UserMessage = "Failed to process image. Please try again later."

var (
	// ErrPredictionFailed matches any *Error of kind KindPredictionFailed
	ErrPredictionFailed = &Error{Kind: KindPredictionFailed}

	// ErrMalformedResponse matches any *Error of kind KindMalformedResponse
	ErrMalformedResponse = &Error{Kind: KindMalformedResponse}

	// ErrEmptyImage is returned when the image payload has no bytes
	ErrEmptyImage = errors.New("image payload is empty")
)

// Error is returned by predictors when a request cannot produce a Result
type Error struct {
	Kind Kind

	// Message is safe to show to the user
	Message string

	// StatusCode is set when the endpoint answered with a non-2xx status
	StatusCode int

	Cause error
}

func (e *Error) Error() string {
	parts := []string{string(e.Kind)}
	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.StatusCode))
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	return strings.Join(parts, ": ")
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches errors of the same kind
func (e *Error) Is(target error) bool {
	var pe *Error
	if errors.As(target, &pe) {
		return e.Kind == pe.Kind
	}
	return false
}

// NewFailedError wraps a transport or backend failure as KindPredictionFailed
func NewFailedError(cause error) *Error {
	return failed(cause, 0)
}

func failed(cause error, status int) *Error {
	return &Error{
		Kind:       KindPredictionFailed,
		Message:    UserMessage,
		StatusCode: status,
		Cause:      cause,
	}
}

func malformed(format string, args ...any) *Error {
	return &Error{
		Kind:    KindMalformedResponse,
		Message: UserMessage,
		Cause:   fmt.Errorf(format, args...),
	}
}

// UserFacing extracts a message suitable for display from any error
func UserFacing(err error) string {
	var pe *Error
	if errors.As(err, &pe) && pe.Message != "" {
		return pe.Message
	}
	return "An error occurred during prediction. Please try again."
}
