package govmetrics

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorCode represents the category of a failure returned by a metric
// computation.
//
// Every error produced by this package is a *MetricsError carrying one of
// these codes, so callers can branch on the category without parsing
// messages.
type ErrorCode int

// Predefined ErrorCodes correspond to specific failure types, such as two
// frames that cannot be compared or a source that produced no frames.
//
// Users can compare a returned error against the matching sentinel with
// errors.Is, for example errors.Is(err, govmetrics.ErrInputMismatch).
const (
	ErrorCodeNoError ErrorCode = iota
	ErrorCodeMalformedInput
	ErrorCodeUnsupportedInput
	ErrorCodeInputMismatch
	ErrorCodeProcessError
	ErrorCodeVideoError
)

// IsNone returns true if the code does not describe a failure.
func (e ErrorCode) IsNone() bool { return e == ErrorCodeNoError }

func (e ErrorCode) String() string {
	switch e {
	case ErrorCodeNoError:
		return "no error"
	case ErrorCodeMalformedInput:
		return "malformed input"
	case ErrorCodeUnsupportedInput:
		return "unsupported input"
	case ErrorCodeInputMismatch:
		return "input mismatch"
	case ErrorCodeProcessError:
		return "process error"
	case ErrorCodeVideoError:
		return "video error"
	default:
		return "unknown error"
	}
}

// MetricsError is the error type returned by every metric in this package.
//
// Reason is a human readable explanation. Two MetricsErrors match under
// errors.Is when their codes are equal, which makes the Err* sentinels below
// usable regardless of the reason.
type MetricsError struct {
	Code   ErrorCode
	Reason string
	// Err is the underlying failure, such as a decoder error, if any.
	Err error
}

func (e *MetricsError) Error() string {
	msg := e.Code.String()
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying failure.
func (e *MetricsError) Unwrap() error { return e.Err }

// Is reports whether target is a *MetricsError with the same code.
func (e *MetricsError) Is(target error) bool {
	t, ok := target.(*MetricsError)
	return ok && t.Code == e.Code
}

// Sentinels for errors.Is.
var (
	ErrMalformedInput   = &MetricsError{Code: ErrorCodeMalformedInput}
	ErrUnsupportedInput = &MetricsError{Code: ErrorCodeUnsupportedInput}
	ErrInputMismatch    = &MetricsError{Code: ErrorCodeInputMismatch}
	ErrProcessError     = &MetricsError{Code: ErrorCodeProcessError}
	ErrVideoError       = &MetricsError{Code: ErrorCodeVideoError}
)

// newError returns a *MetricsError with a stack attached.
func newError(code ErrorCode, reason string) error {
	return errors.WithStack(&MetricsError{Code: code, Reason: reason})
}

// wrapError returns a *MetricsError that keeps err as its cause.
func wrapError(code ErrorCode, err error, format string,
	args ...any) error {
	return errors.WithStack(&MetricsError{
		Code:   code,
		Reason: fmt.Sprintf(format, args...),
		Err:    err,
	})
}

// CodeOf returns the ErrorCode carried by err, or ErrorCodeProcessError when
// err is not a *MetricsError. A nil error yields ErrorCodeNoError.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ErrorCodeNoError
	}
	for _, sentinel := range []*MetricsError{ErrMalformedInput,
		ErrUnsupportedInput, ErrInputMismatch, ErrVideoError} {
		if errors.Is(err, sentinel) {
			return sentinel.Code
		}
	}
	return ErrorCodeProcessError
}
