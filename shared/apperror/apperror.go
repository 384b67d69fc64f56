// Package apperror defines the error taxonomy shared by all HTTP services.
// Handlers map domain errors onto these before writing a response; anything
// that is not an *Error reaches the client as a generic internal error.
package apperror

import "net/http"

// Error codes returned in the error envelope. Clients branch on the code,
// not the message.
const (
	CodeValidation     = "VALIDATION_ERROR"
	CodeBadRequest     = "BAD_REQUEST"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeTokenExpired   = "TOKEN_EXPIRED"
	CodeConflict       = "CONFLICT"
	CodeNotFound       = "NOT_FOUND"
	CodeNotImplemented = "NOT_IMPLEMENTED"
	CodeInternal       = "INTERNAL_ERROR"
)

// Error is a client-visible error with an HTTP status and a stable code.
type Error struct {
	Status  int
	Code    string
	Message string
	Details any
}

func (e *Error) Error() string {
	return e.Message
}

// NewValidation reports malformed input, optionally with field-level details.
func NewValidation(message string, details any) *Error {
	return &Error{Status: http.StatusBadRequest, Code: CodeValidation, Message: message, Details: details}
}

// NewBadRequest reports a structurally invalid request, such as a missing
// required body field.
func NewBadRequest(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Code: CodeBadRequest, Message: message}
}

// NewUnauthorized reports failed authentication. The message must stay
// generic so failures do not reveal whether an account or token exists.
func NewUnauthorized(message string) *Error {
	return &Error{Status: http.StatusUnauthorized, Code: CodeUnauthorized, Message: message}
}

// NewTokenExpired reports an access token past its expiry. Same status as
// NewUnauthorized; the distinct code lets clients trigger a refresh.
func NewTokenExpired() *Error {
	return &Error{Status: http.StatusUnauthorized, Code: CodeTokenExpired, Message: "access token has expired"}
}

// NewConflict reports a uniqueness violation.
func NewConflict(message string) *Error {
	return &Error{Status: http.StatusConflict, Code: CodeConflict, Message: message}
}

// NewNotFound reports a missing resource.
func NewNotFound(message string) *Error {
	return &Error{Status: http.StatusNotFound, Code: CodeNotFound, Message: message}
}

// NewNotImplemented reports a capability that is not yet supported.
func NewNotImplemented(message string) *Error {
	return &Error{Status: http.StatusNotImplemented, Code: CodeNotImplemented, Message: message}
}

// NewInternal reports an unexpected failure. Details are logged server-side
// only; the client sees nothing but this generic message.
func NewInternal() *Error {
	return &Error{Status: http.StatusInternalServerError, Code: CodeInternal, Message: "something went wrong"}
}
