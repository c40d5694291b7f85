package gateway

import (
	"errors"
	"fmt"
)

// Kind classifies a gateway failure so callers can decide whether a retry is
// worth offering.
type Kind string

const (
	// KindServiceUnavailable covers connectivity failures, timeouts and
	// server-side errors.
	KindServiceUnavailable Kind = "service_unavailable"
	// KindInvalidResponse means the service answered but the payload did not
	// have the expected shape.
	KindInvalidResponse Kind = "invalid_response"
	// KindValidationRejected means the service refused the inputs.
	KindValidationRejected Kind = "validation_rejected"
)

// Sentinels for errors.Is checks against *Error values.
var (
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrInvalidResponse    = errors.New("invalid response")
	ErrValidationRejected = errors.New("validation rejected")
)

// Error is returned by every Gateway operation that fails.
type Error struct {
	Kind    Kind
	Op      string // "search", "generate", "execute", "health"
	Status  int    // HTTP status, 0 when no response was received
	Message string // server-provided detail, when available
	Err     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Op, e.sentinel())
	if e.Status != 0 {
		msg += fmt.Sprintf(" (HTTP %d)", e.Status)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	return target == e.sentinel()
}

// Retryable reports whether resubmitting the same request may succeed.
func (e *Error) Retryable() bool {
	return e.Kind == KindServiceUnavailable
}

func (e *Error) sentinel() error {
	switch e.Kind {
	case KindInvalidResponse:
		return ErrInvalidResponse
	case KindValidationRejected:
		return ErrValidationRejected
	default:
		return ErrServiceUnavailable
	}
}

// KindOf returns the kind of a gateway error, or "" for other errors.
func KindOf(err error) Kind {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Kind
	}
	return ""
}

// IsRetryable reports whether err is a gateway error worth retrying.
func IsRetryable(err error) bool {
	var gerr *Error
	return errors.As(err, &gerr) && gerr.Retryable()
}

func unavailable(op string, status int, msg string, err error) *Error {
	return &Error{Kind: KindServiceUnavailable, Op: op, Status: status, Message: msg, Err: err}
}

func invalidResponse(op string, status int, err error) *Error {
	return &Error{Kind: KindInvalidResponse, Op: op, Status: status, Err: err}
}

func rejected(op string, status int, msg string) *Error {
	return &Error{Kind: KindValidationRejected, Op: op, Status: status, Message: msg}
}

// DetailOf returns the server-provided detail of a gateway error, falling
// back to the full error text.
func DetailOf(err error) string {
	var gerr *Error
	if errors.As(err, &gerr) && gerr.Message != "" {
		return gerr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
