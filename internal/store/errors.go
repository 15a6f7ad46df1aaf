package store

import (
	"errors"
	"fmt"
)

// Error is a typed store failure carrying the engine's numeric result code
// and message. Code is -1 when the driver did not report one.
type Error struct {
	Code    int
	Message string
	err     error
}

func (e *Error) Error() string {
	if e.Code >= 0 {
		return fmt.Sprintf("store error %d: %s", e.Code, e.Message)
	}
	return "store error: " + e.Message
}

func (e *Error) Unwrap() error {
	return e.err
}

// wrapErr converts a driver error into an *Error, extracting the numeric
// result code when the driver exposes one.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	code := -1
	var coder interface{ Code() int }
	if errors.As(err, &coder) {
		code = coder.Code()
	}
	return &Error{
		Code:    code,
		Message: op + ": " + err.Error(),
		err:     err,
	}
}
