package findmypet

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Stable error codes. Every operation failure carries exactly one of these,
// so callers can match on behavior instead of parsing messages.
const (
	// CodeValidation marks a locally rejected input or a server 422. The
	// error's Field names the offending field when known.
	CodeValidation = "validation_error"
	// CodeInvalidCredentials is a rejected login attempt.
	CodeInvalidCredentials = "invalid_credentials"
	// CodeAuthenticationRequired means the call needs a token that is
	// missing, or the server rejected the one that was sent.
	CodeAuthenticationRequired = "authentication_required"
	// CodeNetworkUnavailable is a transport-level failure: the backend
	// could not be reached or timed out. Timeouts are not distinguished.
	CodeNetworkUnavailable = "network_unavailable"
	// CodeServerUnavailable is the mutation-path flavor of a transport
	// failure, including a failed pre-flight reachability probe.
	CodeServerUnavailable = "server_unavailable"
	// CodeNotFound means the requested listing does not resolve.
	CodeNotFound = "not_found"
	// CodeFetchError is the read-path catch-all for transport and server
	// failures while fetching listings.
	CodeFetchError = "fetch_error"
	// CodeServerError is any other non-2xx response.
	CodeServerError = "server_error"
)

// Error is the failure result of a client operation.
type Error struct {
	// StatusCode is the HTTP status, or 0 for failures that never
	// reached the server.
	StatusCode int `json:"-"`
	// Code is one of the Code* constants.
	Code string `json:"code"`
	// Message is human-readable, preferring server-supplied detail.
	Message string `json:"message"`
	// Field names the invalid field for validation errors.
	Field string `json:"field,omitempty"`
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// IsValidation reports whether the error is a validation failure.
func (e *Error) IsValidation() bool {
	return e.Code == CodeValidation
}

// IsInvalidCredentials reports whether a login was rejected.
func (e *Error) IsInvalidCredentials() bool {
	return e.Code == CodeInvalidCredentials
}

// IsAuthenticationRequired reports whether the session is missing or was
// rejected by the server.
func (e *Error) IsAuthenticationRequired() bool {
	return e.Code == CodeAuthenticationRequired
}

// IsNotFound reports whether the resource does not exist.
func (e *Error) IsNotFound() bool {
	return e.Code == CodeNotFound
}

// IsUnavailable reports whether the backend could not be reached at all,
// on either the read or the mutation path.
func (e *Error) IsUnavailable() bool {
	return e.Code == CodeNetworkUnavailable || e.Code == CodeServerUnavailable
}

// AsError unwraps err into a client *Error.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func newError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func validationError(field, message string) *Error {
	return &Error{Code: CodeValidation, Message: message, Field: field}
}

// serverMessage extracts the human-readable detail from an error response
// body. The backend answers with {"message": ...} almost everywhere and
// {"msg": ...} from its JWT layer.
func serverMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Msg     string `json:"msg"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Msg
}

// genericAuthMessage is the fallback when the server rejects a request
// without saying why.
const genericAuthMessage = "Authentication required. Please log in."

// statusError maps a non-2xx response to a client error. Auth-specific
// remapping (invalid credentials on login, session teardown on rejected
// bearers) happens at the call sites that know the request's intent.
func statusError(statusCode int, body []byte) *Error {
	msg := serverMessage(body)
	e := &Error{StatusCode: statusCode, Message: msg}
	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		e.Code = CodeAuthenticationRequired
		if e.Message == "" {
			e.Message = genericAuthMessage
		}
	case statusCode == http.StatusNotFound:
		e.Code = CodeNotFound
		if e.Message == "" {
			e.Message = "Resource not found"
		}
	case statusCode == http.StatusUnprocessableEntity:
		e.Code = CodeValidation
		if e.Message == "" {
			e.Message = "Validation error"
		}
	default:
		e.Code = CodeServerError
		if e.Message == "" {
			e.Message = http.StatusText(statusCode)
		}
	}
	return e
}
