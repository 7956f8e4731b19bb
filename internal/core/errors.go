package core

import (
	"fmt"
	"net/http"
)

// ErrorKind discriminates the error taxonomy surfaced to the UI layer.
type ErrorKind string

const (
	// KindNotFound indicates the platform returned 404 for the file.
	KindNotFound ErrorKind = "not_found"
	// KindForbidden indicates the platform returned 403.
	KindForbidden ErrorKind = "forbidden"
	// KindUnauthorized indicates a missing or rejected bearer token (401).
	KindUnauthorized ErrorKind = "unauthorized"
	// KindUnknown covers any other transport failure.
	KindUnknown ErrorKind = "unknown"
	// KindIdentifierMissing indicates no usable file identifier could be
	// resolved from a descriptor.
	KindIdentifierMissing ErrorKind = "identifier_missing"
	// KindDecoding indicates base64 content that could not be decoded.
	KindDecoding ErrorKind = "decoding_error"
	// KindInvalidRequest indicates malformed input from the caller.
	KindInvalidRequest ErrorKind = "invalid_request"
)

// DocError is the typed error for all document gateway failures.
type DocError struct {
	Kind       ErrorKind `json:"kind"`
	Message    string    `json:"message"`
	StatusCode int       `json:"status_code"`
	// Original error for debugging (not exposed to clients)
	Err error `json:"-"`
}

// Error implements the error interface
func (e *DocError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap implements the error unwrapping interface
func (e *DocError) Unwrap() error {
	return e.Err
}

// HTTPStatusCode returns the HTTP status code to render for this error.
func (e *DocError) HTTPStatusCode() int {
	if e.StatusCode != 0 {
		return e.StatusCode
	}
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindIdentifierMissing, KindDecoding:
		return http.StatusUnprocessableEntity
	case KindInvalidRequest:
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

// ToJSON converts the error to a JSON-compatible map
func (e *DocError) ToJSON() map[string]interface{} {
	return map[string]interface{}{
		"error": map[string]interface{}{
			"kind":    e.Kind,
			"message": e.Message,
		},
	}
}

// NewNotFoundError creates a not found error (404)
func NewNotFoundError(message string) *DocError {
	return &DocError{Kind: KindNotFound, Message: message, StatusCode: http.StatusNotFound}
}

// NewForbiddenError creates a forbidden error (403)
func NewForbiddenError(message string) *DocError {
	return &DocError{Kind: KindForbidden, Message: message, StatusCode: http.StatusForbidden}
}

// NewUnauthorizedError creates an unauthorized error (401)
func NewUnauthorizedError(message string) *DocError {
	return &DocError{Kind: KindUnauthorized, Message: message, StatusCode: http.StatusUnauthorized}
}

// NewUnknownError creates an error for unclassified transport failures
func NewUnknownError(message string, err error) *DocError {
	return &DocError{Kind: KindUnknown, Message: message, Err: err}
}

// NewIdentifierMissingError creates an error for descriptors that yield no
// usable file identifier.
func NewIdentifierMissingError(message string) *DocError {
	return &DocError{Kind: KindIdentifierMissing, Message: message}
}

// NewDecodingError creates an error for content that failed base64 decoding
func NewDecodingError(message string, err error) *DocError {
	return &DocError{Kind: KindDecoding, Message: message, Err: err}
}

// NewInvalidRequestError creates an error for malformed caller input (400)
func NewInvalidRequestError(message string, err error) *DocError {
	return &DocError{Kind: KindInvalidRequest, Message: message, StatusCode: http.StatusBadRequest, Err: err}
}

// MapStatusError classifies an upstream HTTP status into the error taxonomy
// with an actionable user-facing message.
func MapStatusError(statusCode int, err error) *DocError {
	switch statusCode {
	case http.StatusNotFound:
		return NewNotFoundError("File not found on the server")
	case http.StatusForbidden:
		return NewForbiddenError("You do not have permission to access this file")
	case http.StatusUnauthorized:
		return NewUnauthorizedError("Your session has expired, please log in again")
	default:
		e := NewUnknownError(fmt.Sprintf("the server returned an unexpected response (%d)", statusCode), err)
		e.StatusCode = http.StatusBadGateway
		return e
	}
}
