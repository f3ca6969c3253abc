// Package httputil centralizes JSON response writing and request decoding so
// handlers stay thin and error envelopes stay consistent.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "verigate/pkg/domain-errors"
)

// errorEnvelope is the JSON error body returned to clients.
type errorEnvelope struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteError translates a domain error into an HTTP response. Internal error
// descriptions are withheld from clients; everything else returns its message
// as error_description.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeInternal
	message := ""

	var de *dErrors.Error
	if errors.As(err, &de) {
		code = de.Code
		if code != dErrors.CodeInternal {
			message = de.Message
		}
	}

	WriteJSON(w, dErrors.ToHTTPStatus(code), errorEnvelope{
		Error:       string(code),
		Description: message,
	})
}

// Decode parses the JSON request body into T. A false return means the error
// response has already been written.
func Decode[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return req, false
	}
	return req, true
}
