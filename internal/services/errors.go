package services

import (
	"errors"
	"fmt"
)

// Kind classifies a service failure so callers can react without parsing messages.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidInput
	KindEmailInUse
	KindNotFound
	KindMissingID
	KindMissingEmail
	KindInvalidCredentials
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindEmailInUse:
		return "email_in_use"
	case KindNotFound:
		return "not_found"
	case KindMissingID:
		return "missing_id"
	case KindMissingEmail:
		return "missing_email"
	case KindInvalidCredentials:
		return "invalid_credentials"
	default:
		return "internal"
	}
}

// Error is returned by every service operation that fails.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Kind == KindInternal {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func wrapError(err error, kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf returns the Kind carried by err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

var (
	ErrEmailInUse         = newError(KindEmailInUse, "Email already in use")
	ErrUserNotFound       = newError(KindNotFound, "User not found")
	ErrMissingID          = newError(KindMissingID, "ID is required")
	ErrMissingEmail       = newError(KindMissingEmail, "Email is required")
	ErrInvalidCredentials = newError(KindInvalidCredentials, "Invalid credentials")
)
