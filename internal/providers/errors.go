package providers

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure so the orchestrator and CLI can act
// on it: configuration errors abort before a batch starts, everything
// else is recorded per file.
type ErrorKind int

const (
	// KindService is the default: the remote call failed (5xx, 429,
	// malformed response, transport error).
	KindService ErrorKind = iota

	// KindConfiguration means a missing or unusable credential or
	// provider setting. Fatal before the batch loop.
	KindConfiguration

	// KindValidation means a bad input path or file type.
	KindValidation

	// KindIO means an unreadable input or unwritable output.
	KindIO

	// KindAuthentication means the service rejected the credential.
	KindAuthentication

	// KindUnsupportedFormat means the file type cannot be processed.
	KindUnsupportedFormat

	// KindCanceled marks inputs never attempted because the run was
	// interrupted.
	KindCanceled
)

// String returns the stable label used in logs and batch summaries.
func (k ErrorKind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindValidation:
		return "validation"
	case KindIO:
		return "io"
	case KindAuthentication:
		return "authentication"
	case KindUnsupportedFormat:
		return "unsupported_format"
	case KindCanceled:
		return "canceled"
	default:
		return "service"
	}
}

// Error is a classified failure, optionally carrying the HTTP status
// that produced it and a wrapped cause.
type Error struct {
	Kind    ErrorKind
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s error (status %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a classified error with a formatted message.
func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError creates a classified error around a cause.
func WrapError(kind ErrorKind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the classification from an error chain. Untyped
// errors classify as service failures.
func KindOf(err error) ErrorKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindService
}

// IsKind reports whether the error chain carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
