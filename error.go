package bframe

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

var (
	// ErrIncompleteHeader is returned by [Outcome.Err] while the header block is incomplete.
	ErrIncompleteHeader = errors.New("bframe: incomplete header")
	// ErrIncompleteBody is returned by [Outcome.Err] while the body is incomplete.
	ErrIncompleteBody = errors.New("bframe: incomplete body")
	// ErrMissingContentLength is returned by [Outcome.Err] when a POST has no Content-Length.
	ErrMissingContentLength = errors.New("bframe: missing content length")
	// ErrMalformedContentLength is returned by [Outcome.Err] when Content-Length has no usable value.
	ErrMalformedContentLength = errors.New("bframe: malformed content length")
	// ErrUnrecognizedMethod is returned by [Outcome.Err] for requests that cannot be framed.
	ErrUnrecognizedMethod = errors.New("bframe: unrecognized method")
	// ErrBufferFull is returned when a configured buffer limit is exceeded.
	ErrBufferFull = errors.New("bframe: buffer full")
	// ErrUnknownStatus is returned by [Outcome.Err] for a status outside the known set.
	ErrUnknownStatus = errors.New("bframe: unknown status")

	// ErrNotFound is returned when a path, field or JSON value is not present in a message.
	ErrNotFound = errors.New("bframe: not found")
	// ErrMalformedValue is returned when a field value has no prefix convertible to the
	// requested type.
	ErrMalformedValue = errors.New("bframe: malformed value")
)

// Code mirrors the http status codes. It is used to create errors that handlers return
// so the mux can render a matching response packet.
type Code int

const (
	CodeUnknown   Code = 0
	CodeOK        Code = http.StatusOK
	CodeCreated   Code = http.StatusCreated
	CodeAccepted  Code = http.StatusAccepted
	CodeNoContent Code = http.StatusNoContent

	CodeBadRequest            Code = http.StatusBadRequest
	CodeUnauthorized          Code = http.StatusUnauthorized
	CodeForbidden             Code = http.StatusForbidden
	CodeNotFound              Code = http.StatusNotFound
	CodeMethodNotAllowed      Code = http.StatusMethodNotAllowed
	CodeConflict              Code = http.StatusConflict
	CodeLengthRequired        Code = http.StatusLengthRequired
	CodeRequestEntityTooLarge Code = http.StatusRequestEntityTooLarge
	CodeUnsupportedMediaType  Code = http.StatusUnsupportedMediaType
	CodeUnprocessableEntity   Code = http.StatusUnprocessableEntity
	CodeTooManyRequests       Code = http.StatusTooManyRequests

	CodeInternalServerError Code = http.StatusInternalServerError
	CodeNotImplemented      Code = http.StatusNotImplemented
	CodeServiceUnavailable  Code = http.StatusServiceUnavailable
)

// Reason returns the standard reason phrase for the code, or "Unknown".
func (c Code) Reason() string {
	if s := http.StatusText(int(c)); s != "" {
		return s
	}

	return "Unknown"
}

// Error carries a status code next to the underlying error.
type Error struct {
	code Code
	err  error
}

// NewError inits a new error given the error code.
func NewError(c Code, underlying error) *Error {
	return &Error{c, underlying}
}

func (e *Error) Code() Code    { return e.code }
func (e *Error) Unwrap() error { return e.err }
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.code.Reason(), e.err.Error())
}

// CodeOf returns the error's status code if it is or wraps an [*Error] and
// [CodeUnknown] otherwise.
func CodeOf(err error) Code {
	var ferr *Error
	if errors.As(err, &ferr) {
		return ferr.Code()
	}

	return CodeUnknown
}
