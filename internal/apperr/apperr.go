// Package apperr carries the error kinds the HTTP layer knows how to answer.
// Domain packages declare their sentinels with New and return them (optionally
// wrapped); Handler turns whatever reaches Fiber into a status and a JSON body.
package apperr

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

type Kind int

const (
	KindUnexpected Kind = iota
	KindInvalidArgument
	KindUnauthenticated
	KindPermissionDenied
	KindNotFound
	KindAlreadyExists
	KindDataConsistency
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid_argument"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindPermissionDenied:
		return "permission_denied"
	case KindNotFound:
		return "not_found"
	case KindAlreadyExists:
		return "already_exists"
	case KindDataConsistency:
		return "data_consistency"
	default:
		return "unexpected"
	}
}

// Status maps a kind to its HTTP status code.
func (k Kind) Status() int {
	switch k {
	case KindInvalidArgument, KindAlreadyExists:
		return fiber.StatusBadRequest
	case KindUnauthenticated:
		return fiber.StatusUnauthorized
	case KindPermissionDenied:
		return fiber.StatusForbidden
	case KindNotFound:
		return fiber.StatusNotFound
	case KindDataConsistency:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

type Error struct {
	Kind   Kind
	Msg    string
	Fields map[string]string
	Err    error
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func InvalidArgument(msg string) *Error { return New(KindInvalidArgument, msg) }
func NotFound(msg string) *Error { return New(KindNotFound, msg) }
func Unauthenticated(msg string) *Error { return New(KindUnauthenticated, msg) }
func PermissionDenied(msg string) *Error { return New(KindPermissionDenied, msg) }
func DataConsistency(msg string) *Error { return New(KindDataConsistency, msg) }

// Invalid reports field-level validation failures.
func Invalid(msg string, fields map[string]string) *Error {
	return &Error{Kind: KindInvalidArgument, Msg: msg, Fields: fields}
}

// Wrap marks err as unexpected. The message is kept for logs only.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindUnexpected, Msg: msg, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

// Handler is the Fiber ErrorHandler for the whole app.
func Handler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}

	var e *Error
	if errors.As(err, &e) && e.Kind != KindUnexpected {
		body := fiber.Map{"error": e.Msg}
		if len(e.Fields) > 0 {
			body["fields"] = e.Fields
		}
		return c.Status(e.Kind.Status()).JSON(body)
	}

	log.Errorw("request failed",
		"requestid", c.Locals("requestid"),
		"method", c.Method(),
		"path", c.Path(),
		"error", err,
	)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Server error"})
}
