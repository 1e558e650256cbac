// Package backend abstracts the text-generation service the engine calls.
// The engine needs exactly one capability from it: a blocking Invoke that can
// fail. Everything upstream of the prompt and downstream of the raw response
// lives outside this module.
package backend

import (
	"context"
	"errors"
	"fmt"
)

// Client is the single external collaborator of the optimization engine.
// params carries the shaped generation context (temperature, maxLength, ...);
// implementations may ignore keys they do not understand.
type Client interface {
	Invoke(ctx context.Context, prompt string, params map[string]any) (string, error)
}

// Transport error categories, used as keys in the engine's error distribution.
const (
	CategoryNetwork     = "network"
	CategoryTimeout     = "timeout"
	CategoryRejected    = "rejected"
	CategoryCircuitOpen = "circuit_open"
	CategoryUnknown     = "unknown"
)

// TransportError is any failure of the backend call: network trouble, a
// timeout, or a backend-side rejection. These are the only errors the engine
// retries.
type TransportError struct {
	Category string
	Message  string
	Err      error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("TransportError(%s): %s: %v", e.Category, e.Message, e.Err)
	}
	return fmt.Sprintf("TransportError(%s): %s", e.Category, e.Message)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a TransportError with the given category.
func NewTransportError(category, message string, err error) *TransportError {
	return &TransportError{Category: category, Message: message, Err: err}
}

// Categorize extracts the transport category from an error chain, defaulting
// to "unknown" for errors that did not originate in this package.
func Categorize(err error) string {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Category
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return CategoryTimeout
	}
	return CategoryUnknown
}
