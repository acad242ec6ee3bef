package types

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a pipeline failure.
type ErrorKind string

const (
	KindUpstreamUnavailable ErrorKind = "upstream_unavailable"
	KindInvalidInput        ErrorKind = "invalid_input"
	KindStorageFailure      ErrorKind = "storage_failure"
)

// Kind-only targets for errors.Is.
var (
	ErrUpstreamUnavailable = &Error{Kind: KindUpstreamUnavailable}
	ErrInvalidInput        = &Error{Kind: KindInvalidInput}
	ErrStorageFailure      = &Error{Kind: KindStorageFailure}
)

// LegacyErrorPrefix marks text that an older client returned in place of an error.
const LegacyErrorPrefix = "Error generating"

// Error is a classified failure. Op names the step that failed.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Err == nil && e.Op == "":
		return string(e.Kind)
	case e.Err == nil:
		return e.Op
	case e.Op == "":
		return e.Err.Error()
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a kind-only Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Err != nil || t.Op != "" {
		return false
	}
	return t.Kind == e.Kind
}

// Upstream wraps a gateway or transport failure.
func Upstream(op string, err error) error {
	return &Error{Kind: KindUpstreamUnavailable, Op: op, Err: err}
}

// InvalidInput wraps a rejected caller input.
func InvalidInput(op string, err error) error {
	return &Error{Kind: KindInvalidInput, Op: op, Err: err}
}

// Storage wraps a filesystem or database failure.
func Storage(op string, err error) error {
	return &Error{Kind: KindStorageFailure, Op: op, Err: err}
}

// KindOf returns the kind of the outermost classified error in err's chain,
// or an empty kind when err is unclassified.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
