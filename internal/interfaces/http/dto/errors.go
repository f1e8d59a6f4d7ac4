package dto

import (
	"net/http"
	"strings"
)

// Error codes used by the HTTP layer itself. Domain and application errors
// carry their own codes; GetHTTPStatus maps both kinds to status codes.
const (
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeConflict     = "CONFLICT"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:       http.StatusInternalServerError,
	ErrCodeBadRequest:     http.StatusBadRequest,
	ErrCodeValidation:     http.StatusBadRequest,
	"PASSWORD_HASH_ERROR": http.StatusInternalServerError,

	ErrCodeUnauthorized:   http.StatusUnauthorized,
	"INVALID_CREDENTIALS": http.StatusUnauthorized,
	ErrCodeForbidden:      http.StatusForbidden,

	ErrCodeNotFound:     http.StatusNotFound,
	"ALREADY_EXISTS":    http.StatusConflict,
	ErrCodeConflict:     http.StatusConflict,
	"DELETION_BLOCKED":  http.StatusConflict,
	"SWEEP_IN_PROGRESS": http.StatusConflict,
	"VERSION_CONFLICT":  http.StatusConflict,
	"INVALID_STATE":     http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code. Codes with an
// INVALID_ prefix map to 400; everything else unknown maps to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
