package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes. The HTTP layer maps each one to a status.
const (
	ECONFLICT     = "conflict"     // 409: duplicate username, category name, coupon code
	EINTERNAL     = "internal"     // 500: details are never shown
	EINVALID      = "invalid"      // 400: bad input, insufficient stock, expired coupon
	ENOTFOUND     = "not_found"    // 404
	EUNAUTHORIZED = "unauthorized" // 401: missing or bad credentials
	EFORBIDDEN    = "forbidden"    // 403: role or ownership check failed
	ERATELIMIT    = "rate_limit"   // 429
	ETOOLARGE     = "too_large"    // 413
	EUNAVAILABLE  = "unavailable"  // 502: FakeStore or another upstream is down
)

const genericInternalMessage = "An internal error occurred. Please try again later."

// Error is an application error. Message is shown to the caller unless
// Code is EINTERNAL. Op names the failing operation ("cart.add_item") and
// only reaches logs.
type Error struct {
	Code    string
	Message string
	Op      string
	Err     error
}

func (e *Error) Error() string {
	parts := make([]string, 0, 3)
	if e.Op != "" {
		parts = append(parts, e.Op)
	}
	parts = append(parts, e.Message)
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *Error) Unwrap() error { return e.Err }

// Public reports whether Message may be returned to the client.
func (e *Error) Public() bool { return e.Code != EINTERNAL }

// inspect finds the outermost *Error or, failing that, *ValidationError
// in err's chain.
func inspect(err error) (*Error, *ValidationError) {
	if err == nil {
		return nil, nil
	}
	var de *Error
	if errors.As(err, &de) {
		return de, nil
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return nil, ve
	}
	return nil, nil
}

// ErrorCode returns the code carried by err. Validation failures are
// EINVALID and anything unrecognised is EINTERNAL.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	switch de, ve := inspect(err); {
	case de != nil:
		return de.Code
	case ve != nil:
		return EINVALID
	default:
		return EINTERNAL
	}
}

// ErrorMessage returns the text safe to put in a response body.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	switch de, ve := inspect(err); {
	case de != nil && de.Public():
		return de.Message
	case de == nil && ve != nil:
		return "Validation failed"
	default:
		return genericInternalMessage
	}
}

// ErrorOp returns the operation recorded on err, if any.
func ErrorOp(err error) string {
	switch de, ve := inspect(err); {
	case de != nil:
		return de.Op
	case ve != nil:
		return ve.Op
	default:
		return ""
	}
}

func newError(code, op, message string, cause error) error {
	return &Error{Code: code, Op: op, Message: message, Err: cause}
}

// Errorf builds an *Error with a formatted message.
//
//	domain.Errorf(domain.EINVALID, "cart.add_item", "only %d in stock", stock)
func Errorf(code, op, format string, args ...any) error {
	return newError(code, op, fmt.Sprintf(format, args...), nil)
}

// NotFound reports a missing resource, e.g. NotFound("product.get", "product", id.String()).
func NotFound(op, resource, identifier string) error {
	return newError(ENOTFOUND, op, fmt.Sprintf("%s not found: %s", resource, identifier), nil)
}

func Unauthorized(op, message string) error { return newError(EUNAUTHORIZED, op, message, nil) }

func Forbidden(op, message string) error { return newError(EFORBIDDEN, op, message, nil) }

func Invalid(op, message string) error { return newError(EINVALID, op, message, nil) }

func Conflict(op, message string) error { return newError(ECONFLICT, op, message, nil) }

// Internal wraps an unexpected failure. Clients only ever see the generic
// message; cause and message go to logs and Sentry.
func Internal(cause error, op, message string) error {
	return newError(EINTERNAL, op, message, cause)
}

// Unavailable reports that an upstream dependency could not be reached.
func Unavailable(cause error, op, message string) error {
	return newError(EUNAVAILABLE, op, message, cause)
}

// ValidationError carries per-field failures for a request body. Field
// names are the JSON names the client sent.
type ValidationError struct {
	Fields map[string]string
	Op     string
}

func (e *ValidationError) Error() string {
	var msg string
	if len(e.Fields) == 1 {
		for field, text := range e.Fields {
			msg = field + ": " + text
		}
	} else {
		msg = fmt.Sprintf("validation failed for %d fields", len(e.Fields))
	}
	if e.Op == "" {
		return msg
	}
	return e.Op + ": " + msg
}

// NewValidationError reports a single bad field.
func NewValidationError(op, field, message string) error {
	return &ValidationError{Op: op, Fields: map[string]string{field: message}}
}

// AddFieldError records another bad field on err, starting a new
// ValidationError when err is not one already.
func AddFieldError(err error, field, message string) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		ve.Fields[field] = message
		return ve
	}
	return &ValidationError{Fields: map[string]string{field: message}}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// GetValidationFields returns the field map of a ValidationError, or nil.
func GetValidationFields(err error) map[string]string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	return nil
}
