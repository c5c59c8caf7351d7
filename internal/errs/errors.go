// Package errs provides the unified error type used across all of askdb.
//
// Every subsystem (database, schema, llm, pipeline, …) wraps its native
// errors into *errs.Error before returning them to callers. Callers use the
// Is* predicates to handle errors without importing driver-specific packages.
//
// Usage:
//
//	// At a stage boundary — wrap native errors:
//	return errs.Wrap(errs.ErrKindMetadata, "list tables", err)
//
//	// In a handler — check error kind:
//	if errs.IsPipeline(err) {
//	    http.Error(w, err.Error(), http.StatusBadGateway)
//	}
package errs

import (
	"errors"
	"fmt"
)

// ErrKind categorises an error without exposing subsystem-specific codes.
// All backends (Postgres, the language model transport, …) map their native
// errors to one of these kinds, giving callers a single consistent API.
type ErrKind int

const (
	ErrKindUnknown    ErrKind = iota
	ErrKindConnection         // database handle acquisition failed
	ErrKindMetadata           // a catalog query failed during schema building
	ErrKindGeneration         // the language-model call or transport failed
	ErrKindExecution          // a generated statement failed against the database
	ErrKindPipeline           // the single kind surfaced by the orchestrator
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindConnection:
		return "connection_failed"
	case ErrKindMetadata:
		return "metadata_query_failed"
	case ErrKindGeneration:
		return "generation_failed"
	case ErrKindExecution:
		return "execution_failed"
	case ErrKindPipeline:
		return "pipeline_failed"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by all askdb subsystems.
// Stages produce it; callers inspect it via the Is* predicates below.
type Error struct {
	Kind    ErrKind
	Message string
	Cause   error // original lower-level error, preserved for logging
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap allows errors.Is / errors.As to traverse the cause chain.
func (e *Error) Unwrap() error {
	return e.Cause
}

// --- Constructors ---

// New creates an *Error with the given kind and message and no cause.
func New(kind ErrKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap creates an *Error with the given kind, message, and an underlying cause.
func Wrap(kind ErrKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// --- Predicates ---

// IsConnection reports whether err is a database connectivity failure.
func IsConnection(err error) bool {
	return kindOf(err) == ErrKindConnection
}

// IsMetadata reports whether err was raised by a failed catalog query.
func IsMetadata(err error) bool {
	return kindOf(err) == ErrKindMetadata
}

// IsGeneration reports whether err was raised by a language-model call.
func IsGeneration(err error) bool {
	return kindOf(err) == ErrKindGeneration
}

// IsExecution reports whether err was raised by running a generated statement.
func IsExecution(err error) bool {
	return kindOf(err) == ErrKindExecution
}

// IsPipeline reports whether err is the orchestrator's caller-facing wrapper.
func IsPipeline(err error) bool {
	return kindOf(err) == ErrKindPipeline
}

// kindOf extracts the ErrKind from the outermost *Error in the chain.
func kindOf(err error) ErrKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrKindUnknown
}
