// Completion: 100% - Error handling complete
package elfobj

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorCategory classifies a builder failure
type ErrorCategory int

const (
	CategoryIO ErrorCategory = iota
	CategoryInvariant
	CategoryOrder
)

func (c ErrorCategory) String() string {
	switch c {
	case CategoryIO:
		return "io"
	case CategoryInvariant:
		return "invariant violation"
	case CategoryOrder:
		return "order violation"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is. ErrOrder errors also match ErrInvariant, since adding a
// local symbol after a global one is one particular way of misusing the builder.
var (
	ErrIO        = errors.New("i/o error")
	ErrInvariant = errors.New("invariant violation")
	ErrOrder     = errors.New("order violation")
)

// BuildError is returned by every failing Builder operation
type BuildError struct {
	Category ErrorCategory
	Op       string // builder operation, e.g. "AddSymbol"
	Message  string
	Err      error // underlying cause, if any
}

// Error implements the error interface
func (e *BuildError) Error() string {
	msg := fmt.Sprintf("%s: %s: %s", e.Op, e.Category, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// Is lets callers match on the category sentinels
func (e *BuildError) Is(target error) bool {
	switch target {
	case ErrIO:
		return e.Category == CategoryIO
	case ErrInvariant:
		return e.Category == CategoryInvariant || e.Category == CategoryOrder
	case ErrOrder:
		return e.Category == CategoryOrder
	}
	return false
}

func invariantError(op, format string, args ...any) error {
	return &BuildError{
		Category: CategoryInvariant,
		Op:       op,
		Message:  fmt.Sprintf(format, args...),
	}
}

func orderError(op, format string, args ...any) error {
	return &BuildError{
		Category: CategoryOrder,
		Op:       op,
		Message:  fmt.Sprintf(format, args...),
	}
}

func ioError(op string, err error, format string, args ...any) error {
	return &BuildError{
		Category: CategoryIO,
		Op:       op,
		Message:  fmt.Sprintf(format, args...),
		Err:      errors.WithStack(err),
	}
}

// layoutDefect aborts serialization when the bytes written disagree with the
// layout computed by Finalize. This is never caused by caller input.
func layoutDefect(format string, args ...any) {
	panic(fmt.Sprintf("elfobj: internal layout defect: "+format+" (please report this bug)", args...))
}
