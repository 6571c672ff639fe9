// internal/room/errors.go
package room

import (
	"errors"
	"fmt"
)

// Code classifies an action failure. Every validation failure is local and
// recoverable: the action is rejected atomically and the room keeps playing.
type Code string

const (
	CodeNotFound          Code = "not_found"
	CodeUnauthorized      Code = "unauthorized"
	CodeInvalidPhase      Code = "invalid_phase"
	CodeInvalidArgument   Code = "invalid_argument"
	CodeResourceExhausted Code = "resource_exhausted"
)

// Error is the structured failure returned to the invoking caller. It never
// accompanies a state mutation.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func errf(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the failure code from an error, or empty if it is not a
// room error.
func CodeOf(err error) Code {
	var re *Error
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}
