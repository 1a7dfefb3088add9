package requestfile

import (
	"errors"
	"fmt"
)

// ErrMalformedInput matches every FormatError with errors.Is.
var ErrMalformedInput = errors.New("malformed request file")

// ErrorCode tells which part of a request file is wrong.
type ErrorCode int

// A list of format error codes.
const (
	ErrCodeUnknown ErrorCode = iota
	ErrCodeTooManyLines
	ErrCodeMissingLine
	ErrCodeBadNumber
)

func (c ErrorCode) String() string {
	switch c {
	case ErrCodeTooManyLines:
		return "too many lines"
	case ErrCodeMissingLine:
		return "missing line"
	case ErrCodeBadNumber:
		return "bad number"
	default:
		return "unknown"
	}
}

// FormatError reports a request file that does not follow the three-line
// format.
type FormatError struct {
	Code    ErrorCode
	File    string
	Line    int
	Message string
	Err     error
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	msg := fmt.Sprintf("%s in file %s", e.Message, e.File)
	if e.Line > 0 {
		msg = fmt.Sprintf("%s, line %d", msg, e.Line)
	}

	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}

	return msg
}

// Unwrap returns the underlying error.
func (e *FormatError) Unwrap() error {
	return e.Err
}

// Is matches ErrMalformedInput and FormatErrors with the same code.
func (e *FormatError) Is(target error) bool {
	if target == ErrMalformedInput {
		return true
	}

	if t, ok := target.(*FormatError); ok {
		return e.Code == t.Code
	}

	return false
}

// IsErrorCode checks if err is a FormatError with the given code.
func IsErrorCode(err error, code ErrorCode) bool {
	var fe *FormatError
	if errors.As(err, &fe) {
		return fe.Code == code
	}

	return false
}

func errTooManyLines(file string, n int) *FormatError {
	return &FormatError{
		Code:    ErrCodeTooManyLines,
		File:    file,
		Message: fmt.Sprintf("too many lines (%d)", n),
	}
}

func errMissingLine(file string, line int, what string) *FormatError {
	return &FormatError{
		Code:    ErrCodeMissingLine,
		File:    file,
		Line:    line,
		Message: what + " not specified",
	}
}

func errBadNumber(file string, line int, what string, err error) *FormatError {
	return &FormatError{
		Code:    ErrCodeBadNumber,
		File:    file,
		Line:    line,
		Message: "invalid " + what,
		Err:     err,
	}
}
