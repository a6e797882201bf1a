// Package failure defines the error taxonomy shared by the producer and the
// reducer. Every failure is terminal for a run.
package failure

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidArgument
	KindAllocation
	KindIO
	KindWorkerSpawn
	KindWorkerJoin
	KindZeroBaseline
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid argument"
	case KindAllocation:
		return "allocation failure"
	case KindIO:
		return "io failure"
	case KindWorkerSpawn:
		return "worker spawn failure"
	case KindWorkerJoin:
		return "worker join failure"
	case KindZeroBaseline:
		return "zero baseline"
	default:
		return "unknown failure"
	}
}

// Sentinels for errors.Is matching. Any *Error of the same Kind matches.
var (
	ErrInvalidArgument = &Error{Kind: KindInvalidArgument}
	ErrAllocation      = &Error{Kind: KindAllocation}
	ErrIO              = &Error{Kind: KindIO}
	ErrWorkerSpawn     = &Error{Kind: KindWorkerSpawn}
	ErrWorkerJoin      = &Error{Kind: KindWorkerJoin}
	ErrZeroBaseline    = &Error{Kind: KindZeroBaseline}
)

// Error is a classified failure. Op names the operation that failed and Err,
// if set, is the underlying cause.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Op)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// New returns a classified error for op.
func New(kind Kind, op string) error {
	return &Error{Kind: kind, Op: op}
}

// Newf is New with a formatted op description.
func Newf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Op: fmt.Sprintf(format, args...)}
}

// Wrap classifies err. It returns nil when err is nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
