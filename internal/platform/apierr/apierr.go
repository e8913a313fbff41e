package apierr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindQuotaExceeded Kind = "quota_exceeded"
	KindValidation    Kind = "validation"
	KindExternal      Kind = "external"
	KindUnexpected    Kind = "unexpected"
)

// Error is a classified failure. Message is what the client sees; Err is kept for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func QuotaExceeded(label string) *Error {
	return &Error{Kind: KindQuotaExceeded, Message: fmt.Sprintf("Free %s limit reached. Upgrade to continue.", label)}
}

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// External wraps a failed outbound call; the client sees the underlying error text.
func External(err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindExternal, Err: err}
}

func Unexpected(err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindUnexpected, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnexpected.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) && e.Kind != "" {
		return e.Kind
	}
	return KindUnexpected
}

// Message is the client-facing text for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Error()
	}
	return err.Error()
}
