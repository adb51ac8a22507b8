// Package fault defines failures returned to the callers of the mirror
// and the oracle. Every failure carries a Kind telling the caller whether
// a verbatim retry is safe.
package fault

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind is a failure class.
type Kind int

// Failure kinds.
const (
	Unknown Kind = iota
	Validation
	Referential
	Conflict
	NotFound
	Storage
	Submission
	ConfirmationTimeout
	ExecutionReverted
)

var kindNames = map[Kind]string{
	Unknown:             "unknown",
	Validation:          "validation",
	Referential:         "referential",
	Conflict:            "conflict",
	NotFound:            "not_found",
	Storage:             "storage",
	Submission:          "submission",
	ConfirmationTimeout: "confirmation_timeout",
	ExecutionReverted:   "execution_reverted",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[Unknown]
}

// Retryable reports whether the same request may be repeated verbatim.
func (k Kind) Retryable() bool {
	return k == Storage || k == Submission
}

// Error is a classified failure.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Cause returns the cause for github.com/pkg/errors.
func (e *Error) Cause() error {
	return e.Err
}

// New creates a failure without a cause.
func New(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// Wrap classifies err. A nil err stays nil.
func Wrap(kind Kind, err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of the outermost classified failure in the
// chain, or Unknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
