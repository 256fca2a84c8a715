package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an AppError by the status code it carries.
type Kind int

const (
	KindBadRequest Kind = iota + 1
	KindUnauthorized
	KindNotFound
	KindServerFailure
	KindNetworkFailure
)

// String returns the taxonomy name of the kind.
func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "BadRequest"
	case KindUnauthorized:
		return "Unauthorized"
	case KindNotFound:
		return "NotFound"
	case KindServerFailure:
		return "ServerFailure"
	case KindNetworkFailure:
		return "NetworkFailure"
	default:
		return "Unknown"
	}
}

// AppError is the single error shape returned by every boundary that talks to the backend.
// StatusCode is 0 for transport-level failures.
// Payload holds the backend response body (decoded JSON or raw text) when one was received.
type AppError struct {
	StatusCode int
	Message    string
	Payload    any

	cause error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.StatusCode == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

// Unwrap exposes the transport error behind a NetworkFailure.
func (e *AppError) Unwrap() error {
	return e.cause
}

// Kind classifies the error by status code.
// 403, 409 and the other 4xx codes without a dedicated kind count as BadRequest.
// INVARIANT: AppError fields are not mutated
func (e *AppError) Kind() Kind {
	switch {
	case e.StatusCode == 0:
		return KindNetworkFailure
	case e.StatusCode == http.StatusUnauthorized:
		return KindUnauthorized
	case e.StatusCode == http.StatusNotFound:
		return KindNotFound
	case e.StatusCode >= 400 && e.StatusCode < 500:
		return KindBadRequest
	default:
		return KindServerFailure
	}
}

// HTTPStatus returns the status code to answer a browser with.
// NetworkFailure maps to 502 since the backend could not be reached.
func (e *AppError) HTTPStatus() int {
	if e.StatusCode == 0 {
		return http.StatusBadGateway
	}
	if e.StatusCode < 400 {
		return http.StatusInternalServerError
	}
	return e.StatusCode
}

// BadRequest returns a 400 AppError.
func BadRequest(message string) *AppError {
	return &AppError{StatusCode: http.StatusBadRequest, Message: message}
}

// Unauthorized returns a 401 AppError.
func Unauthorized(message string) *AppError {
	return &AppError{StatusCode: http.StatusUnauthorized, Message: message}
}

// NotFound returns a 404 AppError.
func NotFound(message string) *AppError {
	return &AppError{StatusCode: http.StatusNotFound, Message: message}
}

// ServerFailure returns a 500 AppError.
func ServerFailure(message string) *AppError {
	return &AppError{StatusCode: http.StatusInternalServerError, Message: message}
}

// NetworkFailure wraps a transport error (DNS, timeout, refused connection).
func NetworkFailure(cause error) *AppError {
	msg := "Network error: unknown error"
	if cause != nil {
		msg = "Network error: " + cause.Error()
	}
	return &AppError{Message: msg, cause: cause}
}

// FromStatus builds an AppError for an HTTP response.
// Non-error status codes are coerced to 500 so that Kind stays within the taxonomy.
func FromStatus(statusCode int, message string, payload any) *AppError {
	if statusCode < 400 {
		statusCode = http.StatusInternalServerError
	}
	return &AppError{StatusCode: statusCode, Message: message, Payload: payload}
}

// As finds the first AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsAppError reports whether err is, or wraps, an AppError.
func IsAppError(err error) bool {
	_, ok := As(err)
	return ok
}

// IsUnauthorized reports whether err is an AppError signalling an invalid credential.
func IsUnauthorized(err error) bool {
	return KindOf(err) == KindUnauthorized
}

// KindOf returns the kind of err, or 0 when err is not an AppError.
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind()
	}
	return 0
}
