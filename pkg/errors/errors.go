// Package errors carries coded errors across linkroute's outer layers.
//
// The routing core never fails; everything around it can. Scene decoding,
// configuration, fetching and rendering return an [*Error] whose [Code]
// tells the caller what kind of failure happened without string matching.
// The CLI turns codes into exit codes with [ExitCode], the preview server
// into status codes with [HTTPStatus].
//
//	if errors.Is(err, errors.ErrCodeFileNotFound) {
//	    // ask for another scene
//	}
//
// Codes survive fmt.Errorf("...: %w", err) wrapping.
package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error class.
type Code string

const (
	ErrCodeInvalidInput  Code = "INVALID_INPUT"  // bad flag, parameter or request
	ErrCodeInvalidScene  Code = "INVALID_SCENE"  // scene document does not decode or validate
	ErrCodeInvalidFormat Code = "INVALID_FORMAT" // unknown scene or output format
	ErrCodeInvalidConfig Code = "INVALID_CONFIG" // config file or value rejected
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND" // local file or remote URL missing

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED" // valid request the current surface cannot serve
)

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return string(e.Code) + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an error with code and a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap is [New] with a cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether the outermost [*Error] in err's chain has code.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode returns the code of the outermost [*Error] in err's chain, or ""
// when there is none.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message without code and cause, falling back to
// err.Error() for uncoded errors.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps err to the preview server's response status. Uncoded
// errors and configuration errors are the server's fault.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidScene, ErrCodeInvalidFormat, ErrCodeInvalidPath:
		return http.StatusBadRequest
	case ErrCodeNotFound, ErrCodeFileNotFound:
		return http.StatusNotFound
	case ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

// Exit codes returned by [ExitCode].
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitUsage       = 2   // the user can fix the invocation or the inputs
	ExitInterrupted = 130 // shell convention for SIGINT
)

// ExitCode maps err to the CLI's process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if errors.Is(err, context.Canceled) {
		return ExitInterrupted
	}
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidScene, ErrCodeInvalidFormat,
		ErrCodeInvalidConfig, ErrCodeInvalidPath, ErrCodeFileNotFound:
		return ExitUsage
	}
	return ExitFailure
}
