// internal/core/errors.go
package core

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
)

// Kind is the error taxonomy used to branch user-facing handling.
type Kind string

const (
	KindAPI        Kind = "API"
	KindAuth       Kind = "AUTH"
	KindNetwork    Kind = "NETWORK"
	KindValidation Kind = "VALIDATION"
	KindNotFound   Kind = "NOT_FOUND"
	KindPermission Kind = "PERMISSION"
	KindUnknown    Kind = "UNKNOWN"
)

// Error represents a structured error with kind, code and optional cause.
type Error struct {
	Kind    Kind           `json:"kind"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Status  int            `json:"status,omitempty"`
	Details map[string]any `json:"details,omitempty"`
	Cause   error          `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Kind:    base.Kind,
		Code:    base.Code,
		Message: base.Message,
		Status:  base.Status,
		Details: base.Details,
		Cause:   cause,
	}
}

// Predefined errors
var (
	ErrUnauthorized = &Error{Kind: KindAuth, Code: "UNAUTHORIZED", Message: "authentication required", Status: http.StatusUnauthorized}
	ErrTokenInvalid = &Error{Kind: KindAuth, Code: "TOKEN_INVALID", Message: "session token is invalid or expired", Status: http.StatusUnauthorized}
	ErrForbidden    = &Error{Kind: KindPermission, Code: "FORBIDDEN", Message: "you do not have access to this resource", Status: http.StatusForbidden}

	ErrNotFound        = &Error{Kind: KindNotFound, Code: "NOT_FOUND", Message: "resource not found", Status: http.StatusNotFound}
	ErrSessionNotFound = &Error{Kind: KindNotFound, Code: "SESSION_NOT_FOUND", Message: "no active session", Status: http.StatusNotFound}

	ErrInvalidInput = &Error{Kind: KindValidation, Code: "INVALID_INPUT", Message: "invalid input", Status: http.StatusBadRequest}

	ErrNetwork = &Error{Kind: KindNetwork, Code: "NETWORK_ERROR", Message: "network request failed"}
	ErrAPI     = &Error{Kind: KindAPI, Code: "API_ERROR", Message: "request failed", Status: http.StatusInternalServerError}
	ErrUnknown = &Error{Kind: KindUnknown, Code: "UNKNOWN", Message: "an unexpected error occurred"}

	ErrStorageFailed = &Error{Kind: KindAPI, Code: "STORAGE_FAILED", Message: "storage operation failed", Status: http.StatusInternalServerError}

	ErrConfigInvalid = &Error{Kind: KindValidation, Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Kind: KindValidation, Code: "CONFIG_MISSING", Message: "required configuration missing"}
)

// Auth creates an AUTH error with a custom message.
func Auth(message string) *Error {
	return &Error{Kind: KindAuth, Code: ErrUnauthorized.Code, Message: message, Status: http.StatusUnauthorized}
}

// Network creates a NETWORK error wrapping the transport failure.
func Network(message string, cause error) *Error {
	return &Error{Kind: KindNetwork, Code: ErrNetwork.Code, Message: message, Cause: cause}
}

// Validation creates a VALIDATION error. Details usually carry the offending field.
func Validation(message string, details map[string]any) *Error {
	return &Error{Kind: KindValidation, Code: ErrInvalidInput.Code, Message: message, Status: http.StatusBadRequest, Details: details}
}

// NotFound creates a NOT_FOUND error for a resource identifier.
func NotFound(resource, id string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Code:    ErrNotFound.Code,
		Message: fmt.Sprintf("%s not found", resource),
		Status:  http.StatusNotFound,
		Details: map[string]any{"resource": resource, "id": id},
	}
}

// Permission creates a PERMISSION error.
func Permission(message string) *Error {
	return &Error{Kind: KindPermission, Code: ErrForbidden.Code, Message: message, Status: http.StatusForbidden}
}

// API creates an API error for a failed upstream response.
func API(message string, status int, details map[string]any) *Error {
	return &Error{Kind: KindAPI, Code: ErrAPI.Code, Message: message, Status: status, Details: details}
}

// Unknown creates an UNKNOWN error for failures outside the taxonomy.
func Unknown(message string, cause error) *Error {
	return &Error{Kind: KindUnknown, Code: ErrUnknown.Code, Message: message, Cause: cause}
}

// FromStatus maps an HTTP status code onto the taxonomy.
func FromStatus(status int, message string) *Error {
	switch {
	case status == http.StatusUnauthorized:
		if message == "" {
			message = ErrUnauthorized.Message
		}
		return Auth(message)
	case status == http.StatusForbidden:
		if message == "" {
			message = ErrForbidden.Message
		}
		return Permission(message)
	case status == http.StatusNotFound:
		if message == "" {
			message = ErrNotFound.Message
		}
		return &Error{Kind: KindNotFound, Code: ErrNotFound.Code, Message: message, Status: status}
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		if message == "" {
			message = ErrInvalidInput.Message
		}
		return &Error{Kind: KindValidation, Code: ErrInvalidInput.Code, Message: message, Status: status}
	default:
		if message == "" {
			message = http.StatusText(status)
		}
		return API(message, status, nil)
	}
}

// Classify returns err as a *Error, classifying it when it is not one already.
// Transport failures become NETWORK errors; everything else is UNKNOWN with
// the original message kept.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var coreErr *Error
	if errors.As(err, &coreErr) {
		return coreErr
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return Network("request timed out", err)
	}

	var opErr *net.OpError
	var dnsErr *net.DNSError
	var urlErr *url.Error
	if errors.As(err, &opErr) || errors.As(err, &dnsErr) || errors.As(err, &urlErr) {
		return Network("unable to reach the server", err)
	}

	return Unknown(err.Error(), err)
}

// KindOf returns the kind of err, UNKNOWN when it cannot be determined.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	return Classify(err).Kind
}

// IsKind reports whether err classifies as kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
