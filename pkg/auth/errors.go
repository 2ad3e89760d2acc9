package auth

import (
	"errors"
	"net/http"
)

// Kind classifies an auth error for transport mapping.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindUnauthorized Kind = "unauthorized"
	KindSecurity     Kind = "security"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
)

// Error is a domain error carrying a classification, an HTTP status, and an
// end-user safe message. Field-level detail goes in Fields.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Fields  map[string]string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches errors of the same kind and message, so clones produced by
// WithCause and WithFields still compare equal to their sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && t.Message == e.Message
}

// WithCause attaches an underlying error without changing the user-facing
// message.
func (e *Error) WithCause(cause error) *Error {
	clone := *e
	clone.cause = cause
	return &clone
}

// WithFields attaches field-level validation detail.
func (e *Error) WithFields(fields map[string]string) *Error {
	clone := *e
	clone.Fields = fields
	return &clone
}

func NewValidationError(msg string) *Error {
	return &Error{Kind: KindValidation, Status: http.StatusBadRequest, Message: msg}
}

func NewUnauthorizedError(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Status: http.StatusUnauthorized, Message: msg}
}

func NewSecurityError(msg string) *Error {
	return &Error{Kind: KindSecurity, Status: http.StatusForbidden, Message: msg}
}

func NewNotFoundError(msg string) *Error {
	return &Error{Kind: KindNotFound, Status: http.StatusNotFound, Message: msg}
}

func NewConflictError(msg string) *Error {
	return &Error{Kind: KindConflict, Status: http.StatusConflict, Message: msg}
}

// StatusOf maps any error to an HTTP status code, defaulting to 500 for
// errors outside the taxonomy.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return http.StatusInternalServerError
}

// KindOf returns the error kind, or an empty kind for untyped errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Reusable errors. Credential failures share one message so responses cannot
// be used to probe which emails are registered.
var (
	ErrInvalidCredentials = NewUnauthorizedError("Invalid email or password")
	ErrAccountInactive    = NewUnauthorizedError("Account is deactivated")
	ErrUserNotFound       = NewNotFoundError("User not found")
	ErrEmailTaken         = NewConflictError("Email is already registered")
	ErrInvalidResetToken  = NewUnauthorizedError("Invalid or expired reset token")
	ErrPasswordBreached   = NewSecurityError("This password has appeared in a known data breach")
	ErrTooManyAttempts    = NewSecurityError("Too many attempts, try again later")
	ErrSessionInvalid     = NewUnauthorizedError("Session is invalid or expired")
	ErrNotLocalAccount    = NewValidationError("Account is managed by an external identity provider")
)
