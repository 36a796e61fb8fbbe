package apperrors

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Kind classifies an error for the HTTP boundary.
type Kind string

const (
	KindNotFound         Kind = "NOT_FOUND"
	KindConflict         Kind = "CONFLICT"
	KindInvalidInput     Kind = "INVALID_INPUT"
	KindUnauthenticated  Kind = "UNAUTHENTICATED"
	KindUnauthorized     Kind = "UNAUTHORIZED"
	KindSignatureInvalid Kind = "SIGNATURE_INVALID"
	KindPaymentRequired  Kind = "PAYMENT_REQUIRED"
	KindUpstream         Kind = "UPSTREAM_FAILURE"
)

// Error carries a kind, a human-readable message and optional structured data
// (e.g. the current price on a payment-required error).
type Error struct {
	Kind    Kind
	Message string
	Data    map[string]interface{}
}

func (e *Error) Error() string {
	return e.Message
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithData builds an error carrying structured data for the caller to branch on.
func WithData(kind Kind, message string, data map[string]interface{}) *Error {
	return &Error{Kind: kind, Message: message, Data: data}
}

// Upstream wraps a storage or gateway failure.
func Upstream(op string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: fmt.Sprintf("%s: %v", op, err)}
}

// KindOf returns the kind of err, or KindUpstream for unclassified errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUpstream
}

// HTTPStatus maps an error kind to an HTTP status code.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindNotFound:
		return fiber.StatusNotFound
	case KindConflict:
		return fiber.StatusConflict
	case KindInvalidInput:
		return fiber.StatusBadRequest
	case KindUnauthenticated:
		return fiber.StatusUnauthorized
	case KindUnauthorized:
		return fiber.StatusForbidden
	case KindSignatureInvalid:
		return fiber.StatusBadRequest
	case KindPaymentRequired:
		return fiber.StatusPaymentRequired
	default:
		return fiber.StatusInternalServerError
	}
}
