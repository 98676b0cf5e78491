// Package httputil holds the JSON envelope helpers shared by handlers.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "ledgerpass/pkg/domain-errors"
)

// ErrorResponse is the JSON error envelope. Code is the registry's stable
// numeric error code when one applies.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
	Code             uint32 `json:"code,omitempty"`
}

// StatusFor maps a domain error code to an HTTP status.
func StatusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeUnauthorized:
		return http.StatusForbidden
	case dErrors.CodeInvalidInput, dErrors.CodeBadRequest, dErrors.CodeInvariantViolation:
		return http.StatusBadRequest
	case dErrors.CodeAlreadyExists:
		return http.StatusConflict
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// WriteError writes err as a JSON envelope. Internal errors never leak their
// description.
func WriteError(w http.ResponseWriter, err error) {
	WriteErrorWithCode(w, err, 0)
}

// WriteErrorWithCode is WriteError plus a numeric code in the envelope.
func WriteErrorWithCode(w http.ResponseWriter, err error, numeric uint32) {
	code := dErrors.CodeOf(err)
	resp := ErrorResponse{Error: string(code), Code: numeric}
	if de, ok := dErrors.As(err); ok && code != dErrors.CodeInternal {
		resp.ErrorDescription = de.Message
	}
	WriteJSON(w, StatusFor(code), resp)
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteUnauthenticated answers 401 for requests that carry no usable
// credential. Registry access denials are 403 via WriteError instead.
func WriteUnauthenticated(w http.ResponseWriter, description string) {
	WriteJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", ErrorDescription: description})
}
