// Package api holds the response envelope and request validation shared by
// every HTTP surface.
package api

import (
	"encoding/json"
	"log"
	"net/http"
)

// Error codes clients switch on.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeInvalidTestType    = "INVALID_TEST_TYPE"
	CodeInvalidStudent     = "INVALID_STUDENT"
	CodeAlreadyCompleted   = "ALREADY_COMPLETED"
	CodePreTestRequired    = "PRE_TEST_REQUIRED"
	CodeSubmission         = "SUBMISSION_ERROR"
	CodeExport             = "EXPORT_ERROR"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeNoToken            = "NO_TOKEN"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeRateLimited        = "RATE_LIMITED"
	CodeInternal           = "INTERNAL_ERROR"
)

var statusByCode = map[string]int{
	CodeValidation:         http.StatusBadRequest,
	CodeInvalidTestType:    http.StatusBadRequest,
	CodeInvalidStudent:     http.StatusBadRequest,
	CodeAlreadyCompleted:   http.StatusBadRequest,
	CodePreTestRequired:    http.StatusBadRequest,
	CodeSubmission:         http.StatusBadRequest,
	CodeExport:             http.StatusBadRequest,
	CodeUnauthorized:       http.StatusUnauthorized,
	CodeInvalidCredentials: http.StatusUnauthorized,
	CodeNoToken:            http.StatusUnauthorized,
	CodeForbidden:          http.StatusForbidden,
	CodeNotFound:           http.StatusNotFound,
	CodeUserNotFound:       http.StatusNotFound,
	CodeRateLimited:        http.StatusTooManyRequests,
	CodeInternal:           http.StatusInternalServerError,
}

// StatusFor maps an error code to its HTTP status. Unknown codes are 500.
func StatusFor(code string) int {
	if s, ok := statusByCode[code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Result is the envelope of every JSON response. Build it with Ok or Err;
// exactly one of Data and Error is set.
type Result struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

func Ok(data any) Result { return Result{Success: true, Data: data} }

func Err(code, message string, details any) Result {
	return Result{Error: &ErrorBody{Code: code, Message: message, Details: details}}
}

// Status is 200 for success and the table status of the error code otherwise.
func (r Result) Status() int {
	if r.Success {
		return http.StatusOK
	}
	if r.Error == nil {
		return http.StatusInternalServerError
	}
	return StatusFor(r.Error.Code)
}

func Write(w http.ResponseWriter, res Result) {
	WriteStatus(w, res.Status(), res)
}

// WriteStatus writes res with an explicit status, e.g. 201 for creations.
func WriteStatus(w http.ResponseWriter, status int, res Result) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(res); err != nil {
		log.Printf("write response: %v", err)
	}
}

func WriteOK(w http.ResponseWriter, data any) { Write(w, Ok(data)) }

func WriteErr(w http.ResponseWriter, code, message string) { Write(w, Err(code, message, nil)) }

// Internal logs err under op and writes a generic 500 with message.
func Internal(w http.ResponseWriter, op string, err error, message string) {
	log.Printf("%s: %v", op, err)
	WriteErr(w, CodeInternal, message)
}
