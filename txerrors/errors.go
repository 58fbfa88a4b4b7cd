package txerrors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies where an error came from.
type Kind int

// error kinds
const (
	KindUnknown Kind = iota
	KindValidation
	KindSigning
	KindSubmission
	KindNotFound
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindSigning:
		return "signing"
	case KindSubmission:
		return "submission"
	case KindNotFound:
		return "not_found"
	case KindDecode:
		return "decode"
	}
	return "unknown"
}

// Error struct
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind with no message, so the sentinels
// below work with errors.Is regardless of the wrapped message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Message == "" && t.Err == nil {
		return e.Kind == t.Kind
	}
	return e == t
}

var (
	// ErrNotFound is returned by query services when an object or digest
	// does not exist or is not indexed yet.
	ErrNotFound = &Error{Kind: KindNotFound}

	// ErrActionInFlight rejects a second action for the same actor or entity.
	ErrActionInFlight = New(KindValidation, "another action is already in flight")
)

// New function
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap function
func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// Validation function
func Validation(format string, args ...interface{}) *Error {
	return New(KindValidation, format, args...)
}

// NotFound builds a not-found error for the given identifier.
func NotFound(what, id string) *Error {
	return New(KindNotFound, "%s %s not found", what, id)
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsNotFound reports whether err means "does not exist or not indexed yet".
// Structured errors are classified by kind; anything else falls back to a
// case-insensitive match on the message, which is how ledger nodes report
// missing transactions over JSON-RPC.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var e *Error
	if errors.As(err, &e) {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not found") || strings.Contains(msg, "could not find")
}
