package extraction

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// DefaultDiagnosticLimit bounds diagnostic text surfaced to callers
const DefaultDiagnosticLimit = 200

// Kind classifies extraction failures
type Kind string

const (
	KindInvalidRequest     Kind = "invalid_request"
	KindBackendUnavailable Kind = "backend_unavailable"
	KindExtractionFailed   Kind = "extraction_failed"
	KindExtractionTimeout  Kind = "extraction_timeout"
	KindNoOutputProduced   Kind = "no_output_produced"
	KindReadFailed         Kind = "read_failed"
)

// Reported returns the kind exposed to callers. Timeouts are reported as
// extraction failures but stay distinct in logs.
func (k Kind) Reported() Kind {
	if k == KindExtractionTimeout {
		return KindExtractionFailed
	}
	return k
}

// Error is the failure type returned by every extraction stage
type Error struct {
	Kind    Kind
	Message string
	Detail  string // truncated diagnostic output, may be empty
	Err     error
}

func (e *Error) Error() string {
	msg := string(e.Kind) + ": " + e.Message
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates an Error whose detail is truncated to limit characters
func NewError(kind Kind, message, detail string, limit int, cause error) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
		Detail:  Truncate(detail, limit),
		Err:     cause,
	}
}

// Errorf creates an Error without diagnostic detail
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err, or "" when err is not an *Error
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// AsError returns err as an *Error, classifying unknown errors as extraction failures
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return NewError(KindExtractionFailed, "extraction failed", err.Error(), DefaultDiagnosticLimit, err)
}

// Truncate shortens s to at most limit characters without splitting a rune.
// A non-positive limit falls back to DefaultDiagnosticLimit.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		limit = DefaultDiagnosticLimit
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}
