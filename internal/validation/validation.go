// Package validation is the single point through which data enters or leaves
// the domain. Struct tags on the domain types declare the shape; this package
// turns validator failures into field-path errors the rest of the app can
// surface verbatim.
package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ticketcheck/ticket-check/internal/domain"
)

// RootPath marks an error about the value as a whole.
const RootPath = "<root>"

// Brazilian mobile numbers: (00) 90000-0000 or 00900000000.
var phoneRegex = regexp.MustCompile(`^(?:\(\d{2}\)\s?9\d{4}-?\d{4}|\d{2}9\d{8})$`)

// FieldError describes one violated rule.
type FieldError struct {
	Path    string
	Message string
}

// Error aggregates every violated field of a single validation pass.
type Error struct {
	Context string
	Fields  []FieldError
}

func (e *Error) Error() string {
	issues := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		issues[i] = f.Path + ": " + f.Message
	}
	return fmt.Sprintf("%s validation failed: %s", e.Context, strings.Join(issues, "; "))
}

// NewError builds a validation error by hand, for rules that are not
// expressed as struct tags.
func NewError(context string, fields ...FieldError) *Error {
	return &Error{Context: context, Fields: fields}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(v, "timestamp", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseTimestamp(fl.Field().String())
		return err == nil
	})
	mustRegister(v, "br_phone", func(fl validator.FieldLevel) bool {
		return phoneRegex.MatchString(fl.Field().String())
	})

	v.RegisterStructValidation(validateTicketUpdate, domain.UpdateTicketInput{})

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %q validation: %v", tag, err))
	}
}

// validateTicketUpdate refines ticket patches: a transition into a closing
// status must supply the provider and the closing audit note in the same
// call. They cannot have been set by an earlier update.
func validateTicketUpdate(sl validator.StructLevel) {
	in, ok := sl.Current().Interface().(domain.UpdateTicketInput)
	if !ok {
		return
	}
	if in.Status == nil || !in.Status.IsClosing() {
		return
	}
	if in.Provider == nil || strings.TrimSpace(*in.Provider) == "" {
		sl.ReportError(in.Provider, "provider", "Provider", "required_with_closing", "")
	}
	if in.ClosingDetails == nil || strings.TrimSpace(*in.ClosingDetails) == "" {
		sl.ReportError(in.ClosingDetails, "closingDetails", "ClosingDetails", "required_with_closing", "")
	}
}

// Struct validates value against its declared tags. The context label names
// the operation in error messages, e.g. "createUser input".
func Struct(value any, context string) error {
	err := validate.Struct(value)
	if err == nil {
		return nil
	}

	ferrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("%s validation failed: %w", context, err)
	}

	fields := make([]FieldError, 0, len(ferrs))
	for _, fe := range ferrs {
		fields = append(fields, FieldError{Path: pathFor(fe), Message: messageFor(fe)})
	}
	return &Error{Context: context, Fields: fields}
}

// RequiredID trims and validates an opaque id argument.
func RequiredID(id, context string) (string, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return "", NewError(context, FieldError{Path: RootPath, Message: "is required"})
	}
	return trimmed, nil
}

func pathFor(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 && idx+1 < len(ns) {
		return ns[idx+1:]
	}
	return RootPath
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must have at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must have at most %s characters", fe.Param())
	case "email":
		return "must be a valid email address"
	case "br_phone":
		return "must match the format (00) 00000-0000"
	case "timestamp":
		return "must be an ISO-8601 timestamp"
	case "oneof":
		return fmt.Sprintf("must be one of %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "required_with_closing":
		return "is required when the update closes the ticket"
	default:
		return fmt.Sprintf("failed the %q rule", fe.Tag())
	}
}
