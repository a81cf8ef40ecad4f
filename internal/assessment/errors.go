package assessment

import (
	"errors"
	"fmt"
)

// Code is a stable identifier clients switch on.
type Code string

const (
	CodeAlreadyCompleted Code = "ALREADY_COMPLETED"
	CodePreTestRequired  Code = "PRE_TEST_REQUIRED"
	CodeNotFound         Code = "NOT_FOUND"
	CodeInvalidStudent   Code = "INVALID_STUDENT"
	CodeSubmission       Code = "SUBMISSION_ERROR"
)

// Error is an expected, caller-recoverable outcome. Anything else returned by
// the Service is an unexpected failure.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

// ErrNotFound is returned by Store lookups that match no row.
var ErrNotFound = errors.New("assessment: not found")

func alreadyCompleted(t TestType) *Error {
	return &Error{Code: CodeAlreadyCompleted, Message: "You have already completed the " + t.Label()}
}

func preTestRequired() *Error {
	return &Error{Code: CodePreTestRequired, Message: "You must complete the pre-test before taking the post-test"}
}

func notFound(msg string) *Error { return &Error{Code: CodeNotFound, Message: msg} }

func notPractice() *Error {
	return &Error{Code: CodeSubmission, Message: "Pre- and post-tests are submitted through the test endpoints"}
}

func invalidStudent() *Error { return &Error{Code: CodeInvalidStudent, Message: "Student not found"} }

// AsError extracts a domain Error from err.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
