package apperror

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Kind classifies an error for the caller. Handlers map a Kind to an HTTP
// status; services only ever decide the Kind.
type Kind int

const (
	KindUnknown Kind = iota
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindInvalidInput
	KindEmptyCart
	KindDuplicatePayment
	KindIllegalTransition
	KindUnknownDeliveryOption
	KindConflict
	KindPersistence
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindInvalidInput:
		return "invalid_input"
	case KindEmptyCart:
		return "empty_cart"
	case KindDuplicatePayment:
		return "duplicate_payment"
	case KindIllegalTransition:
		return "illegal_transition"
	case KindUnknownDeliveryOption:
		return "unknown_delivery_option"
	case KindConflict:
		return "conflict"
	case KindPersistence:
		return "persistence_failure"
	default:
		return "unknown"
	}
}

// Issue is one field-level validation problem.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the application error carried across package boundaries.
type Error struct {
	Kind    Kind
	Message string
	Issues  []Issue
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

// Is matches two *Error values of the same Kind and Message so package-level
// sentinels keep working after being wrapped or copied.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Invalid builds an InvalidInput error carrying every issue found.
func Invalid(issues []Issue) *Error {
	return &Error{Kind: KindInvalidInput, Message: "request validation failed", Issues: issues}
}

// Persistence wraps a storage error. The message stays generic because it is
// shown to the caller; the cause is only for logs.
func Persistence(err error) *Error {
	return &Error{Kind: KindPersistence, Message: "temporarily unable to process the request, please retry", Err: err}
}

// OrPersistence passes application errors through and wraps anything else
// as a persistence failure.
func OrPersistence(err error) error {
	if err == nil || KindOf(err) != KindUnknown {
		return err
	}
	return Persistence(err)
}

// Logged is OrPersistence that also logs the cause when the result is a
// persistence failure.
func Logged(logger *zap.Logger, msg string, err error, fields ...zap.Field) error {
	err = OrPersistence(err)
	if KindOf(err) == KindPersistence {
		logger.Error(msg, append(fields, zap.Error(err))...)
	}
	return err
}

var (
	ErrUnauthenticated = New(KindUnauthenticated, "unauthorized")
	ErrForbidden       = New(KindForbidden, "forbidden")
)

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

// IssuesOf returns the validation issues attached to err, if any.
func IssuesOf(err error) []Issue {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Issues
	}
	return nil
}

func HTTPStatus(kind Kind) int {
	switch kind {
	case KindUnauthenticated:
		return fiber.StatusUnauthorized
	case KindForbidden:
		return fiber.StatusForbidden
	case KindNotFound:
		return fiber.StatusNotFound
	case KindInvalidInput, KindEmptyCart, KindUnknownDeliveryOption:
		return fiber.StatusBadRequest
	case KindDuplicatePayment, KindIllegalTransition, KindConflict:
		return fiber.StatusConflict
	case KindPersistence:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// Respond writes err as the JSON error body used by every handler.
// Unknown errors never leak their text.
func Respond(c *fiber.Ctx, err error) error {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "internal server error"})
	}

	body := fiber.Map{
		"message": appErr.Message,
		"code":    appErr.Kind.String(),
	}
	if len(appErr.Issues) > 0 {
		body["issues"] = appErr.Issues
	}
	if appErr.Kind == KindPersistence {
		c.Set(fiber.HeaderRetryAfter, "1")
	}
	return c.Status(HTTPStatus(appErr.Kind)).JSON(body)
}
