// Package apperror defines the error taxonomy shared by the session, booking
// and enrollment flows. Handlers translate a Kind into a status code or a
// redirect; services never touch HTTP.
package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies an error by how the user is expected to recover from it.
type Kind int

const (
	KindInternal Kind = iota
	// KindAuthRequired: no identity for a protected action; go to login.
	KindAuthRequired
	// KindForbidden: identity lacks the required role or flag.
	KindForbidden
	// KindValidation: input rejected before any remote call was made.
	KindValidation
	// KindRemote: the gateway or payment collaborator failed; user may retry.
	KindRemote
	// KindNotFound: the requested entity does not exist.
	KindNotFound
	// KindConflict: the action clashes with one already in progress.
	KindConflict
	// KindPaymentDeclined: the payment collaborator refused the charge.
	KindPaymentDeclined
)

func (k Kind) String() string {
	switch k {
	case KindAuthRequired:
		return "authentication_required"
	case KindForbidden:
		return "authorization_denied"
	case KindValidation:
		return "validation_error"
	case KindRemote:
		return "remote_failure"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindPaymentDeclined:
		return "payment_declined"
	}
	return "internal_error"
}

// Error is a classified application error.
type Error struct {
	Kind    Kind
	Message string
	// Fields holds per-field messages for validation errors.
	Fields map[string]string
	// Return is the path the user intended to reach, for KindAuthRequired.
	Return string
	// Redirect is the safe default target for KindForbidden and KindNotFound.
	Redirect string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message != "" {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// AuthRequired builds a KindAuthRequired error remembering the intended path.
func AuthRequired(returnPath string) *Error {
	return &Error{Kind: KindAuthRequired, Message: "please sign in to continue", Return: returnPath}
}

// Forbidden builds a KindForbidden error with the safe redirect target.
func Forbidden(redirect string) *Error {
	return &Error{Kind: KindForbidden, Message: "you do not have access to this page", Redirect: redirect}
}

// Validation builds a KindValidation error.
func Validation(msg string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: msg, Fields: fields}
}

// NotFound builds a KindNotFound error pointing back to a listing.
func NotFound(msg, listing string) *Error {
	return &Error{Kind: KindNotFound, Message: msg, Redirect: listing}
}

// Remote wraps a collaborator failure.
func Remote(msg string, err error) *Error {
	return &Error{Kind: KindRemote, Message: msg, Err: err}
}

// Conflict builds a KindConflict error.
func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

// PaymentDeclined wraps a refused charge.
func PaymentDeclined(msg string, err error) *Error {
	return &Error{Kind: KindPaymentDeclined, Message: msg, Err: err}
}

// KindOf returns the Kind of err, or KindInternal when err is not classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// As extracts the *Error from err.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
