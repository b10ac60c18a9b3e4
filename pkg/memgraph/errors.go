package memgraph

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// Kind classifies an engine error for callers that need to branch on
// failure mode (e.g. an HTTP layer choosing a status code) without string
// matching.
type Kind string

const (
	KindInvalidArgument      Kind = "invalid_argument"
	KindNotFound             Kind = "not_found"
	KindDuplicateDetected    Kind = "duplicate_detected"
	KindEmbeddingUnavailable Kind = "embedding_unavailable"
	KindStoreFailure         Kind = "store_failure"
	KindTransient            Kind = "transient"
	KindUnknown              Kind = "unknown"
)

// Error wraps an underlying cause with a Kind classification.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// DuplicateError is returned by AddNote when an incoming note's embedding is
// a near-duplicate of an already-stored note.
type DuplicateError struct {
	ExistingID int64
	Similarity float64
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate_detected: note %d at similarity %.4f", e.ExistingID, e.Similarity)
}

// Is allows errors.Is(err, ErrDuplicateDetected) style checks without
// needing the concrete similarity/id fields.
func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicateDetected
}

// ErrDuplicateDetected is the sentinel matched by errors.Is against a
// *DuplicateError.
var ErrDuplicateDetected = errors.New("memgraph: duplicate note detected")

// ClassifyError inspects an error and returns its Kind. Errors produced by
// this package already carry a Kind; errors bubbling up from the store or
// network layer are classified heuristically, the same way the rest of this
// stack's instrumentation classifies errors for metrics and traces.
func ClassifyError(err error) Kind {
	if err == nil {
		return ""
	}

	var engineErr *Error
	if errors.As(err, &engineErr) {
		return engineErr.Kind
	}

	var dupErr *DuplicateError
	if errors.As(err, &dupErr) {
		return KindDuplicateDetected
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTransient
	}

	errStrLower := strings.ToLower(err.Error())

	if strings.Contains(errStrLower, "timeout") || strings.Contains(errStrLower, "deadline exceeded") {
		return KindTransient
	}

	var netErr *net.OpError
	if errors.As(err, &netErr) {
		return KindTransient
	}
	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "connection reset") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "dial tcp") ||
		strings.Contains(errStrLower, "rate limit") ||
		strings.Contains(errStrLower, "429") ||
		strings.Contains(errStrLower, "503") {
		return KindTransient
	}

	if strings.Contains(errStrLower, "embedding") || strings.Contains(errStrLower, "openai") {
		return KindEmbeddingUnavailable
	}

	if strings.Contains(errStrLower, "sql") ||
		strings.Contains(errStrLower, "database") ||
		strings.Contains(errStrLower, "constraint") ||
		strings.Contains(errStrLower, "transaction") {
		return KindStoreFailure
	}

	if strings.Contains(errStrLower, "not found") {
		return KindNotFound
	}

	if strings.Contains(errStrLower, "invalid") ||
		strings.Contains(errStrLower, "required") ||
		strings.Contains(errStrLower, "cannot be empty") ||
		strings.Contains(errStrLower, "must be") {
		return KindInvalidArgument
	}

	return KindUnknown
}
