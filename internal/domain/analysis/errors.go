package analysis

import (
	"errors"
	"fmt"
	"strings"
)

// ConfigurationError means required persistence settings are absent.
// It is fatal: no request can succeed until the process is reconfigured.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("missing persistence settings: %s", strings.Join(e.Missing, ", "))
}

// HowToUse lists the ways a caller can supply text.
type HowToUse struct {
	Option1 string `json:"option1"`
	Option2 string `json:"option2"`
}

// ValidationError means the caller supplied no usable text.
type ValidationError struct {
	Message  string
	HowToUse HowToUse
}

func (e *ValidationError) Error() string { return e.Message }

// ErrNoText builds the ValidationError returned for blank input.
func ErrNoText() *ValidationError {
	return &ValidationError{
		Message: "No text provided",
		HowToUse: HowToUse{
			Option1: "Add ?text=YourText to the URL",
			Option2: `Send a POST request with JSON body: {"text": "Your text here"}`,
		},
	}
}

// PersistenceError means the document store could not complete a write or read.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	if e.Err == nil {
		return e.Op
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Summary is the message safe to hand back to a caller.
func (e *PersistenceError) Summary() string {
	if e.Err == nil {
		return e.Op
	}
	return e.Err.Error()
}

// IsConfiguration reports whether err carries a ConfigurationError.
func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
