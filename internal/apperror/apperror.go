// Package apperror defines the error taxonomy shared by the inventory core and
// its transports. Every Kind has a stable machine-readable code.
package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type Kind string

const (
	KindValidation        Kind = "VALIDATION_ERROR"
	KindNotFound          Kind = "NOT_FOUND"
	KindDuplicateKey      Kind = "DUPLICATE_KEY"
	KindInsufficientStock Kind = "INSUFFICIENT_STOCK"
	KindConflict          Kind = "CONFLICT"
	KindInvalidOperation  Kind = "INVALID_OPERATION"
	KindPersistence       Kind = "PERSISTENCE_ERROR"
	KindInternal          Kind = "INTERNAL_ERROR"
)

type Error struct {
	Kind    Kind   `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
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

// Is matches another *Error of the same Kind, so sentinel comparisons like
// errors.Is(err, apperror.ErrNotFound) work on wrapped values.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

func New(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Sentinels for errors.Is checks; they carry no message so they match any
// error of their kind.
var (
	ErrValidation        = &Error{Kind: KindValidation}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrDuplicateKey      = &Error{Kind: KindDuplicateKey}
	ErrInsufficientStock = &Error{Kind: KindInsufficientStock}
	ErrConflict          = &Error{Kind: KindConflict}
	ErrInvalidOperation  = &Error{Kind: KindInvalidOperation}
	ErrPersistence       = &Error{Kind: KindPersistence}
)

func Validation(format string, args ...any) *Error {
	return New(KindValidation, fmt.Sprintf(format, args...), nil)
}

func NotFound(format string, args ...any) *Error {
	return New(KindNotFound, fmt.Sprintf(format, args...), nil)
}

func DuplicateKey(format string, args ...any) *Error {
	return New(KindDuplicateKey, fmt.Sprintf(format, args...), nil)
}

func InsufficientStock(format string, args ...any) *Error {
	return New(KindInsufficientStock, fmt.Sprintf(format, args...), nil)
}

func Conflict(format string, args ...any) *Error {
	return New(KindConflict, fmt.Sprintf(format, args...), nil)
}

func InvalidOperation(format string, args ...any) *Error {
	return New(KindInvalidOperation, fmt.Sprintf(format, args...), nil)
}

// Persistence wraps a storage failure. A nil err yields nil.
func Persistence(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}
	return New(KindPersistence, message, err)
}

// KindOf returns the Kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// MessageOf returns the user-facing message for err.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal error"
}

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindInvalidOperation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindDuplicateKey, KindConflict:
		return http.StatusConflict
	case KindInsufficientStock:
		return http.StatusUnprocessableEntity
	case KindPersistence:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func GRPCCode(err error) codes.Code {
	switch KindOf(err) {
	case KindValidation:
		return codes.InvalidArgument
	case KindInvalidOperation, KindInsufficientStock:
		return codes.FailedPrecondition
	case KindNotFound:
		return codes.NotFound
	case KindDuplicateKey:
		return codes.AlreadyExists
	case KindConflict:
		return codes.Aborted
	case KindPersistence:
		return codes.Unavailable
	default:
		return codes.Internal
	}
}

// GRPCStatus converts err into a status error whose message is prefixed by the
// stable code, e.g. "INSUFFICIENT_STOCK: only 10 available".
func GRPCStatus(err error) error {
	if err == nil {
		return nil
	}
	return status.Error(GRPCCode(err), fmt.Sprintf("%s: %s", KindOf(err), MessageOf(err)))
}
