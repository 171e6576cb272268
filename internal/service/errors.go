package service

import (
	"errors"
	"fmt"
)

// ErrNotFound signals an unknown liquidation, customer or transaction id.
// Distinct from validation failures so callers can branch without string
// matching.
var ErrNotFound = errors.New("not found")

// ValidationError reports invalid caller input or a domain-state violation
// (bad dates, missing customer, already-paid liquidation, missing variant
// input). Never retried automatically; no state is mutated.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func validationErrorf(format string, args ...interface{}) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// ConflictError reports a uniqueness violation: duplicate IFU, email or
// transaction id. Reported distinctly so callers can offer a retry.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return e.Reason }

func conflictErrorf(format string, args ...interface{}) error {
	return &ConflictError{Reason: fmt.Sprintf(format, args...)}
}

// CodecError wraps a failure from the external payment codec. Generation
// never degrades to a partial artifact; the wrapped failure surfaces whole.
type CodecError struct {
	Op  string
	Err error
}

func (e *CodecError) Error() string { return "payment codec " + e.Op + " failed: " + e.Err.Error() }
func (e *CodecError) Unwrap() error { return e.Err }
