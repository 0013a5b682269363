// Package apperrors defines the error kinds shared by the stores, services and
// HTTP handlers.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindDuplicate
	KindAuth
	KindUnauthorized
	KindForbidden
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindDuplicate:
		return "duplicate"
	case KindAuth:
		return "auth"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindStorage:
		return "storage"
	default:
		return "internal"
	}
}

// Error codes surfaced to clients next to the message.
const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeNotFound          = "NOT_FOUND"
	CodeUserNotFound      = "USER_NOT_FOUND"
	CodePaperNotFound     = "PAPER_NOT_FOUND"
	CodeDuplicateEmail    = "DUPLICATE_EMAIL"
	CodeInvalidCredential = "INVALID_CREDENTIAL"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN"
	CodeMissingFile       = "MISSING_FILE"
	CodeTextTooShort      = "TEXT_TOO_SHORT"
	CodeUnsupportedFile   = "UNSUPPORTED_FILE"
	CodeAlreadyReviewed   = "ALREADY_REVIEWED"
	CodeStorage           = "STORAGE_ERROR"
	CodeInternal          = "SERVER_ERROR"
)

type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, code, msg string, err error) *Error {
	return &Error{Kind: kind, Code: code, Message: msg, Err: err}
}

func Validation(code, msg string) *Error {
	if code == "" {
		code = CodeValidation
	}
	return newError(KindValidation, code, msg, nil)
}

func NotFound(code, msg string) *Error {
	if code == "" {
		code = CodeNotFound
	}
	return newError(KindNotFound, code, msg, nil)
}

func Duplicate(code, msg string) *Error {
	return newError(KindDuplicate, code, msg, nil)
}

func Auth(code, msg string) *Error {
	return newError(KindAuth, code, msg, nil)
}

func Unauthorized(msg string) *Error {
	return newError(KindUnauthorized, CodeUnauthorized, msg, nil)
}

func Forbidden(msg string) *Error {
	return newError(KindForbidden, CodeForbidden, msg, nil)
}

func Storage(msg string, err error) *Error {
	return newError(KindStorage, CodeStorage, msg, err)
}

func Internal(msg string, err error) *Error {
	return newError(KindInternal, CodeInternal, msg, err)
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf reports KindInternal for errors outside the taxonomy.
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindDuplicate, KindAuth:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
