package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is an error with a stable machine-readable code and the HTTP
// status it is rendered with. Internal is logged but never sent to clients.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

func (e *AppError) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.Internal != nil:
		return e.Message + ": " + e.Internal.Error()
	default:
		return e.Message
	}
}

// Unwrap exposes Internal to errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Internal
}

// Is matches AppErrors by code, so derived copies still match their sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// WithInternal returns a copy carrying err as its cause.
func (e *AppError) WithInternal(err error) *AppError {
	if e == nil {
		return nil
	}
	cpy := *e
	cpy.Internal = err
	return &cpy
}

// WithMessage returns a copy with a caller-facing message.
func (e *AppError) WithMessage(format string, args ...any) *AppError {
	if e == nil {
		return nil
	}
	cpy := *e
	cpy.Message = fmt.Sprintf(format, args...)
	return &cpy
}

// Sentinels shared by handlers, middleware and services.
var (
	ErrBadRequest     = New("BAD_REQUEST", "Invalid request", http.StatusBadRequest)
	ErrUnauthorized   = New("UNAUTHORIZED", "Authentication required", http.StatusUnauthorized)
	ErrSessionClosed  = New("auth.session_closed", "Session has ended, please sign in again", http.StatusUnauthorized)
	ErrForbidden      = New("FORBIDDEN", "Permission denied", http.StatusForbidden)
	ErrNotFound       = New("NOT_FOUND", "Resource not found", http.StatusNotFound)
	ErrInvalidMenu    = New("menu.invalid", "Menu configuration is invalid", http.StatusUnprocessableEntity)
	ErrRateLimit      = New("RATE_LIMIT_EXCEEDED", "Too many requests, please slow down", http.StatusTooManyRequests)
	ErrInternalServer = New("INTERNAL_SERVER_ERROR", "Internal server error", http.StatusInternalServerError)

	ErrInvalidCredentials = New("INVALID_CREDENTIALS", "Invalid username or password", http.StatusUnauthorized)
)

// New builds an application error.
func New(code, message string, statusCode int) *AppError {
	return &AppError{Code: code, Message: message, StatusCode: statusCode}
}

// FromError returns the AppError inside err, or ErrInternalServer wrapping it.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return ErrInternalServer.WithInternal(err)
}

// NewBadRequest is ErrBadRequest with a specific message.
func NewBadRequest(message string) *AppError {
	return ErrBadRequest.WithMessage("%s", message)
}
