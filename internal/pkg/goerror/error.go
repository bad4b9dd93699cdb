package goerror

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound indicates that the requested resource could not be found.
	ErrNotFound = errors.New("resource not found")

	// ErrConflict indicates that the request could not be completed due to a conflict.
	ErrConflict = errors.New("resource conflict")
)

// Type classifies errors into high-level buckets used by the application.
type Type int

const (
	// TypeServer represents server-side failures.
	TypeServer Type = iota
	// TypeBusiness represents domain rule violations.
	TypeBusiness
	// TypeValidation represents input validation failures.
	TypeValidation
)

func (t Type) String() string {
	switch t {
	case TypeValidation:
		return "ERROR_TYPE_VALIDATION"
	case TypeBusiness:
		return "ERROR_TYPE_BUSINESS"
	case TypeServer:
		return "ERROR_TYPE_SERVER"
	default:
		return "ERROR_TYPE_UNKNOWN"
	}
}

// Code is a stable identifier used for mapping errors to HTTP status codes.
type Code int

const (
	CodeInternal Code = iota
	CodeInvalidFormat
	CodeInvalidInput
	CodeNotFound
	CodeConflict
	CodeTooManyRequest
	CodeUnauthorized
	CodeForbidden
	CodeTimeout
)

func (c Code) String() string {
	switch c {
	case CodeInvalidFormat:
		return "ERROR_CODE_INVALID_FORMAT"
	case CodeInvalidInput:
		return "ERROR_CODE_INVALID_INPUT"
	case CodeNotFound:
		return "ERROR_CODE_NOT_FOUND"
	case CodeConflict:
		return "ERROR_CODE_CONFLICT"
	case CodeTooManyRequest:
		return "ERROR_CODE_TOO_MANY_REQUESTS"
	case CodeUnauthorized:
		return "ERROR_CODE_UNAUTHORIZED"
	case CodeForbidden:
		return "ERROR_CODE_FORBIDDEN"
	default:
		return "ERROR_CODE_INTERNAL"
	}
}

// Default kinds. Domain packages declare their own kinds next to their errors.
const (
	KindInternal     = "InternalError"
	KindInvalidInput = "InvalidInput"
	KindInvalidBody  = "InvalidBody"
)

// Error is a structured error used across the application.
//
// Besides the wrapped error it carries a user-facing message, a machine
// readable kind, a high-level type and a transport code.
type Error struct {
	err     error
	msg     string
	kind    string
	errType Type
	code    Code
	fields  map[string]string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.err != nil {
		return e.err.Error()
	}

	if e.msg != "" {
		return e.msg
	}

	switch e.errType {
	case TypeValidation:
		return "Validation violation"
	case TypeBusiness:
		return "Logical business not meet with requirement"
	default:
		return "Internal error"
	}
}

// String returns a verbose representation of the error for logging.
func (e *Error) String() string {
	return fmt.Sprintf(
		"Error Type: %s, Kind: %s, Code: %s, Message: %s, Underlying Error: %v",
		e.errType.String(),
		e.kind,
		e.code.String(),
		e.msg,
		e.err,
	)
}

// Msg returns the user-facing error message.
func (e *Error) Msg() string { return e.msg }

// Kind returns the machine-readable error kind, e.g. "InvalidSignature".
func (e *Error) Kind() string { return e.kind }

// Type returns the high-level error type.
func (e *Error) Type() Type { return e.errType }

// Code returns the transport code.
func (e *Error) Code() Code { return e.code }

// Fields returns validation errors (field to message map), if any.
func (e *Error) Fields() map[string]string { return e.fields }

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is an *Error of the same kind.
//
// It lets callers compare against package level sentinels built with NewKind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.kind != "" && t.kind == e.kind
}

// StatusCode maps the error code to an HTTP status code.
func (e *Error) StatusCode() int {
	switch e.code {
	case CodeInvalidFormat:
		return http.StatusBadRequest
	case CodeInvalidInput:
		return http.StatusUnprocessableEntity
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeTimeout:
		return http.StatusRequestTimeout
	case CodeTooManyRequest:
		return http.StatusTooManyRequests
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func newError(err error, msg, kind string, et Type, code Code) *Error {
	return &Error{err: err, msg: msg, kind: kind, errType: et, code: code}
}

// NewServer creates a server-type error wrapping err. The message is generic.
func NewServer(err error) error {
	return newError(err, "Internal server error", KindInternal, TypeServer, CodeInternal)
}

// NewServerKind is NewServer with an explicit kind, e.g. "StorageFailure".
func NewServerKind(kind string, err error) error {
	return newError(err, "Internal server error", kind, TypeServer, CodeInternal)
}

// NewBusiness creates a business-type error with the specified message and code.
func NewBusiness(msg string, code Code) error {
	return newError(nil, msg, "", TypeBusiness, code)
}

// NewKind creates a business-type error carrying a machine-readable kind.
func NewKind(kind, msg string, code Code) error {
	return newError(nil, msg, kind, TypeBusiness, code)
}

// NewInvalidInput creates a validation error from err, or from kv pairs of field and message.
func NewInvalidInput(err error, kv ...string) error {
	if err != nil {
		return newError(err, "Validation error", KindInvalidInput, TypeValidation, CodeInvalidInput)
	}

	if len(kv)%2 != 0 {
		return newError(nil, "Invalid request body", KindInvalidBody, TypeValidation, CodeInvalidFormat)
	}

	e := newError(nil, "Validation error", KindInvalidInput, TypeValidation, CodeInvalidInput)
	e.fields = make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		e.fields[kv[i]] = kv[i+1]
	}

	return e
}

// NewInvalidFormat creates a validation error for a malformed request body.
func NewInvalidFormat(msgs ...string) error {
	if len(msgs) == 0 {
		return newError(nil, "Invalid request body", KindInvalidBody, TypeValidation, CodeInvalidFormat)
	}
	return newError(nil, msgs[0], KindInvalidBody, TypeValidation, CodeInvalidFormat)
}
