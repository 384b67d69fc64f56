// Package httpx holds the JSON request/response helpers shared by the HTTP
// handlers. Every response uses the same envelope: {"success": true, "data":
// ...} on success and {"success": false, "error": {...}} on failure.
package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/bookhaven/book-platform-api/shared/apperror"
)

// Response is the success envelope.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse is the failure envelope.
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   ErrorBody `json:"error"`
}

// ErrorBody carries the stable error code, a human-readable message, and
// optional field-level details.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

const maxBodyBytes = 1 << 20

// DecodeJSON reads a JSON request body into dst, rejecting unknown fields
// and bodies over 1 MiB.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return err
	}

	// Trailing content after the JSON value is a malformed request.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("request body must contain a single JSON object")
	}

	return nil
}

// RespondJSON writes data inside the success envelope.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, Response{Success: true, Data: data})
}

// RespondMessage writes a success envelope carrying only a message.
func RespondMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Response{Success: true, Message: message})
}

// RespondError writes err inside the failure envelope. Errors that are not
// *apperror.Error are masked as a generic internal error.
func RespondError(w http.ResponseWriter, err error) {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		appErr = apperror.NewInternal()
	}

	writeJSON(w, appErr.Status, ErrorResponse{
		Success: false,
		Error: ErrorBody{
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: appErr.Details,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(body)
}
