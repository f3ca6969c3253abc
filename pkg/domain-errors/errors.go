// Package domainerrors defines coded errors for the verification domain.
//
// Services translate infrastructure sentinels (pkg/platform/sentinel) into
// these coded errors so the HTTP layer can map them to status codes without
// inspecting store internals.
package domainerrors

import "net/http"

// Code identifies the class of a domain error. The string value is the wire
// representation returned in the JSON error envelope.
type Code string

const (
	// CodeBadRequest covers malformed or invalid client input.
	CodeBadRequest Code = "bad_request"

	// CodeNotFound covers lookups for sessions that do not exist.
	CodeNotFound Code = "not_found"

	// CodeInvalidTransition covers stage-precondition violations, e.g. a
	// biometric submission before the document stage completed, or a risk
	// assessment repeated after the decision was recorded.
	CodeInvalidTransition Code = "invalid_transition"

	// CodeCollaborator covers failures of an external analyzer. The session
	// stays at its last committed stage and the caller may retry.
	CodeCollaborator Code = "collaborator_failure"

	// CodeInternal covers everything else. Descriptions are withheld from
	// clients for this code.
	CodeInternal Code = "internal_error"
)

// Error is a coded domain error.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

// New constructs a coded domain error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// ToHTTPStatus maps a code to its HTTP response status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidTransition:
		return http.StatusConflict
	case CodeCollaborator:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
