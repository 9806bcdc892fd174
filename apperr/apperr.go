// Package apperr defines the error kinds shared by the token, access and
// application layers. Callers switch on Kind instead of matching messages.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	// Internal covers store or cache connectivity failures and anything unexpected.
	Internal Kind = iota
	// Conflict is a uniqueness violation.
	Conflict
	// Unauthorized is a bad, expired or absent credential, or a token for a vanished user.
	Unauthorized
	// NotFound is a missing resource or one not owned by the caller.
	NotFound
	// InvalidInput is a payload that violates size or format constraints.
	InvalidInput
	// Expired is a token past its expiry.
	Expired
	// Invalid is a token with a bad signature, structure or subject.
	Invalid
)

func (k Kind) String() string {
	switch k {
	case Conflict:
		return "conflict"
	case Unauthorized:
		return "unauthorized"
	case NotFound:
		return "not_found"
	case InvalidInput:
		return "invalid_input"
	case Expired:
		return "expired"
	case Invalid:
		return "invalid"
	default:
		return "internal"
	}
}

// Error carries a Kind, a caller-safe message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New returns an Error without a cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap returns an Error that keeps err as its cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf reports the Kind of the first *Error in err's chain, or Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// MessageOf returns the caller-safe message of err. Internal failures always
// collapse to a generic message so store details never leak.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != Internal {
		return e.Message
	}
	return "internal error"
}

// Has reports whether any *Error in err's chain carries kind.
func Has(err error, kind Kind) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Err
	}
	return false
}
