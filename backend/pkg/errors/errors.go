package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeGraph represents graph store errors
	ErrorTypeGraph ErrorType = "graph"
	// ErrorTypeIngest represents roster ingestion errors
	ErrorTypeIngest ErrorType = "ingest"
	// ErrorTypeNotFound represents missing entities
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeContext represents context cancellation/timeout errors
	ErrorTypeContext ErrorType = "context"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// Graph Errors

// ErrGraphConnectionFailed is returned when the graph store cannot be reached
type ErrGraphConnectionFailed struct {
	*BaseError
	Backend string
}

func NewGraphConnectionFailed(backend string, err error) *ErrGraphConnectionFailed {
	return &ErrGraphConnectionFailed{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("graph store unavailable: %s", backend), err),
		Backend:   backend,
	}
}

// ErrGraphQueryFailed is returned when a graph query fails
type ErrGraphQueryFailed struct {
	*BaseError
	Operation string
}

func NewGraphQueryFailed(operation string, err error) *ErrGraphQueryFailed {
	return &ErrGraphQueryFailed{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("query failed: %s", operation), err),
		Operation: operation,
	}
}

// ErrStoreClosed is returned by a store that has been torn down
var ErrStoreClosed = NewBaseError(ErrorTypeGraph, "graph store closed", nil)

// Ingest Errors

// ErrInvalidRoster is returned when an attendee payload is absent or malformed.
// Nothing has been written when it is returned.
type ErrInvalidRoster struct {
	*BaseError
	Reason string
}

func NewInvalidRoster(reason string) *ErrInvalidRoster {
	return &ErrInvalidRoster{
		BaseError: NewBaseError(ErrorTypeIngest, fmt.Sprintf("invalid attendees data: %s", reason), nil),
		Reason:    reason,
	}
}

// Not Found Errors

// ErrEventNotFound is returned when an event does not exist
type ErrEventNotFound struct {
	*BaseError
	EventID string
}

func NewEventNotFound(eventID string) *ErrEventNotFound {
	return &ErrEventNotFound{
		BaseError: NewBaseError(ErrorTypeNotFound, fmt.Sprintf("event not found: %s", eventID), nil),
		EventID:   eventID,
	}
}

// ErrPersonNotFound is returned when a person does not exist
type ErrPersonNotFound struct {
	*BaseError
	PersonID string
}

func NewPersonNotFound(personID string) *ErrPersonNotFound {
	return &ErrPersonNotFound{
		BaseError: NewBaseError(ErrorTypeNotFound, fmt.Sprintf("person not found: %s", personID), nil),
		PersonID:  personID,
	}
}

// Context Errors

// ErrContextCancelled is returned when context is cancelled
type ErrContextCancelled struct {
	*BaseError
	Operation string
}

func NewContextCancelled(operation string, err error) *ErrContextCancelled {
	return &ErrContextCancelled{
		BaseError: NewBaseError(ErrorTypeContext, fmt.Sprintf("context cancelled: %s", operation), err),
		Operation: operation,
	}
}

// Config Errors

// ErrConfigMissingRequired is returned when a required config value is missing
type ErrConfigMissingRequired struct {
	*BaseError
	Field string
}

func NewConfigMissingRequired(field string) *ErrConfigMissingRequired {
	return &ErrConfigMissingRequired{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("missing required config: %s", field), nil),
		Field:     field,
	}
}

// Helper functions

// typed is satisfied by BaseError and every wrapper embedding it
type typed interface {
	errorType() ErrorType
}

func (e *BaseError) errorType() ErrorType {
	return e.Type
}

// IsErrorType checks if an error, or any error it wraps, is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	for err != nil {
		if t, ok := err.(typed); ok && t.errorType() == errType {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// IsUnavailable reports whether err means the graph backend could not serve
// the request, as opposed to the request legitimately finding no data.
func IsUnavailable(err error) bool {
	var connErr *ErrGraphConnectionFailed
	if errors.As(err, &connErr) {
		return true
	}
	var queryErr *ErrGraphQueryFailed
	if errors.As(err, &queryErr) {
		return true
	}
	return errors.Is(err, ErrStoreClosed)
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	// Context errors are not retryable
	if IsErrorType(err, ErrorTypeContext) {
		return false
	}
	// Graph connection errors are retryable
	return IsErrorType(err, ErrorTypeGraph)
}
