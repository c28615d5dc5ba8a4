// Package shared holds the error taxonomy and small helpers used across
// service and tool layers.
package shared

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
)

// ConfigurationError signals a request that cannot be served because the
// process configuration has no entry for it, e.g. an unknown store id.
// Never retried.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string { return e.Message }

// StatusCode reports the HTTP-equivalent status for the error.
func (e *ConfigurationError) StatusCode() int { return http.StatusBadRequest }

// NewConfigurationError builds a ConfigurationError.
func NewConfigurationError(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Message: fmt.Sprintf(format, args...)}
}

// ValidationError signals a malformed or out-of-range payload. Field names
// the offending field; ItemIndex is >= 0 when the violation is inside a
// line-item collection, -1 otherwise. Never retried.
type ValidationError struct {
	Field     string
	ItemIndex int
	Message   string
}

func (e *ValidationError) Error() string {
	if e.ItemIndex >= 0 {
		return fmt.Sprintf("%s (item %d): %s", e.Field, e.ItemIndex, e.Message)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// StatusCode reports the HTTP-equivalent status for the error.
func (e *ValidationError) StatusCode() int { return http.StatusUnprocessableEntity }

// NewValidationError builds a ValidationError for a top-level field.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, ItemIndex: -1, Message: fmt.Sprintf(format, args...)}
}

// NewItemValidationError builds a ValidationError for a line item field.
func NewItemValidationError(index int, field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, ItemIndex: index, Message: fmt.Sprintf(format, args...)}
}

// PersistenceError wraps a storage-layer failure. The message is safe to
// show to callers: it never carries table names or credentials. The wrapped
// cause is kept for logs only.
type PersistenceError struct {
	Message string
	Cause   error
}

func (e *PersistenceError) Error() string { return e.Message }

func (e *PersistenceError) Unwrap() error { return e.Cause }

// StatusCode reports the HTTP-equivalent status for the error.
func (e *PersistenceError) StatusCode() int { return http.StatusInternalServerError }

// NewPersistenceError builds a PersistenceError wrapping cause.
func NewPersistenceError(message string, cause error) *PersistenceError {
	return &PersistenceError{Message: message, Cause: cause}
}

// TransportKind classifies outbound HTTP failures.
type TransportKind int

const (
	// TransportTimeout covers request or dial timeouts.
	TransportTimeout TransportKind = iota
	// TransportUnavailable covers connection refused and DNS failures.
	TransportUnavailable
	// TransportUpstream covers non-2xx upstream responses.
	TransportUpstream
)

// TransportError signals a failed call to a third-party HTTP API
// (WhatsApp bridge, Azure AI Search, embeddings provider).
type TransportError struct {
	Kind    TransportKind
	Message string
	Cause   error
}

func (e *TransportError) Error() string { return e.Message }

func (e *TransportError) Unwrap() error { return e.Cause }

// StatusCode reports the HTTP-equivalent status for the error.
func (e *TransportError) StatusCode() int {
	switch e.Kind {
	case TransportTimeout:
		return http.StatusRequestTimeout
	case TransportUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// NewTransportError builds a TransportError.
func NewTransportError(kind TransportKind, message string, cause error) *TransportError {
	return &TransportError{Kind: kind, Message: message, Cause: cause}
}

// StatusCode extracts the HTTP-equivalent status from any error in the
// taxonomy, defaulting to 500 for unclassified failures.
func StatusCode(err error) int {
	var cfg *ConfigurationError
	if errors.As(err, &cfg) {
		return cfg.StatusCode()
	}
	var val *ValidationError
	if errors.As(err, &val) {
		return val.StatusCode()
	}
	var per *PersistenceError
	if errors.As(err, &per) {
		return per.StatusCode()
	}
	var tra *TransportError
	if errors.As(err, &tra) {
		return tra.StatusCode()
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
