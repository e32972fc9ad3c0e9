package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/techtrend/emporium/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// DecodeJSON reads a JSON request body into dst and runs its validate tags.
// Malformed bodies are EINVALID; tag failures become a ValidationError;
// bodies cut off by MaxBodySize are ETOOLARGE.
func DecodeJSON(r *http.Request, op string, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &maxErr):
			return &domain.Error{Code: domain.ETOOLARGE, Op: op, Message: "Request body too large"}
		case errors.Is(err, io.EOF):
			return domain.Invalid(op, "Request body is required")
		case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
			return domain.Invalid(op, "Request body is not valid JSON")
		case errors.As(err, &typeErr):
			if typeErr.Field != "" {
				return domain.NewValidationError(op, typeErr.Field, fmt.Sprintf("must be a %s", typeErr.Type))
			}
			return domain.Invalid(op, "Request body has the wrong shape")
		default:
			return domain.Invalid(op, "Request body could not be decoded")
		}
	}
	return Validate(op, dst)
}

// Validate runs the validate struct tags on v.
func Validate(op string, v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.Internal(err, op, "validate request")
	}
	return &domain.ValidationError{Op: op, Fields: FormatValidationErrors(verrs)}
}

// FormatValidationErrors turns validator failures into field messages.
func FormatValidationErrors(errs validator.ValidationErrors) map[string]string {
	messages := make(map[string]string, len(errs))
	for _, err := range errs {
		field := err.Field()
		switch err.Tag() {
		case "required":
			messages[field] = "is required"
		case "email":
			messages[field] = "must be a valid email address"
		case "min":
			messages[field] = minMessage(err)
		case "max":
			messages[field] = maxMessage(err)
		case "gt":
			messages[field] = fmt.Sprintf("must be greater than %s", err.Param())
		case "gte":
			messages[field] = fmt.Sprintf("must be at least %s", err.Param())
		case "lte":
			messages[field] = fmt.Sprintf("must be at most %s", err.Param())
		case "eqfield":
			messages[field] = fmt.Sprintf("must match %s", lowerFirst(err.Param()))
		case "uuid", "uuid4":
			messages[field] = "must be a valid id"
		case "alphanum":
			messages[field] = "may only contain letters and digits"
		case "oneof":
			messages[field] = fmt.Sprintf("must be one of: %s", err.Param())
		default:
			messages[field] = fmt.Sprintf("failed %s validation", err.Tag())
		}
	}
	return messages
}

func minMessage(err validator.FieldError) string {
	switch err.Kind() {
	case reflect.String:
		return fmt.Sprintf("must be at least %s characters", err.Param())
	case reflect.Slice, reflect.Map:
		return fmt.Sprintf("must contain at least %s items", err.Param())
	}
	return fmt.Sprintf("must be at least %s", err.Param())
}

func maxMessage(err validator.FieldError) string {
	switch err.Kind() {
	case reflect.String:
		return fmt.Sprintf("must be at most %s characters", err.Param())
	case reflect.Slice, reflect.Map:
		return fmt.Sprintf("must contain at most %s items", err.Param())
	}
	return fmt.Sprintf("must be at most %s", err.Param())
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// PathUUID parses the named path value as a UUID.
func PathUUID(r *http.Request, name, op string) (uuid.UUID, error) {
	raw := r.PathValue(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(op, name, "must be a valid id")
	}
	return id, nil
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	// Headers are already sent, so an encode failure has nowhere to go.
	_ = json.NewEncoder(w).Encode(v)
}

// MessageResponse is the body of endpoints that only report an outcome.
type MessageResponse struct {
	Message string `json:"message"`
}

// WriteMessage writes a MessageResponse.
func WriteMessage(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, MessageResponse{Message: message})
}
