// Package apperr classifies failures so callers can tell transient I/O problems
// from problems that will not go away on their own.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	// KindInternal is the default for anything unclassified.
	KindInternal Kind = "internal"
	// KindUnavailable marks transient I/O failures: network, quota, 5xx.
	KindUnavailable Kind = "unavailable"
	// KindFailedPrecondition marks configuration or input problems (bad range, missing sheet).
	KindFailedPrecondition Kind = "failed_precondition"
	KindUnauthorized       Kind = "unauthorized"
	// KindConflict is returned when another sync run holds the lease.
	KindConflict Kind = "conflict"
)

var (
	ErrSyncInProgress = errors.New("sync already in progress")
	ErrUnauthorized   = errors.New("unauthorized")
)

type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// E wraps err with an operation name and kind. A nil err yields nil.
func E(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of the outermost classified error in the chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func Retryable(err error) bool {
	return err != nil && KindOf(err) == KindUnavailable
}
