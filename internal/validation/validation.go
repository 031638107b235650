// Package validation turns raw request data into typed, constrained values.
//
// Struct rules are expressed with go-playground/validator tags. Field names
// in reported errors are the json names of the struct fields.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	// ErrInvalid matches every validation failure with errors.Is
	ErrInvalid = errors.New("validation failed")
	// ErrInvalidID is returned when an identifier is not a UUID
	ErrInvalidID = fmt.Errorf("%w: id must be a valid UUID", ErrInvalid)
)

// Layouts accepted for calendar dates and times of day
const (
	DateLayout      = "2006-01-02"
	HourLayout      = "15:04:05"
	ShortHourLayout = "15:04"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("hour", func(fl validator.FieldLevel) bool {
		_, err := ParseHour(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("flag", func(fl validator.FieldLevel) bool {
		return fl.Field().Kind() == reflect.Bool
	})
	v.RegisterCustomTypeFunc(boolTypeFunc, Bool{})

	return v
}

// Error describes which fields failed validation
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return ErrInvalid.Error()
	}

	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return ErrInvalid.Error() + ": " + strings.Join(parts, "; ")
}

func (e *Error) Is(target error) bool {
	return target == ErrInvalid
}

// FieldError builds an Error for a single field
func FieldError(field, message string) *Error {
	return &Error{Fields: map[string]string{field: message}}
}

// Struct validates s against its `validate` tags. Errors deferred while
// decoding s take precedence over tag failures on the same field.
func Struct(s any) error {
	out := &Error{Fields: make(map[string]string)}

	err := validate.Struct(s)
	if err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("validate: %w", err)
		}
		for _, fe := range fieldErrs {
			out.Fields[fe.Field()] = message(fe)
		}
	}

	if d, ok := s.(deferrer); ok {
		for field, msg := range d.deferredFields() {
			out.Fields[field] = msg
		}
	}

	if len(out.Fields) == 0 {
		return nil
	}
	return out
}

// ParseID parses a path or body identifier as a UUID
func ParseID(raw string) (uuid.UUID, error) {
	if err := validate.Var(raw, "required,uuid"); err != nil {
		return uuid.Nil, ErrInvalidID
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrInvalidID
	}

	return id, nil
}

// ParseDate parses a YYYY-MM-DD calendar date
func ParseDate(raw string) (time.Time, error) {
	return time.Parse(DateLayout, raw)
}

// ParseHour parses a time of day given as HH:MM or HH:MM:SS and
// returns it normalized to HH:MM:SS
func ParseHour(raw string) (string, error) {
	if t, err := time.Parse(HourLayout, raw); err == nil {
		return t.Format(HourLayout), nil
	}

	t, err := time.Parse(ShortHourLayout, raw)
	if err != nil {
		return "", fmt.Errorf("invalid hour %q", raw)
	}
	return t.Format(HourLayout), nil
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "notblank":
		return "must not be blank"
	case "uuid":
		return "must be a valid UUID"
	case "datetime":
		return "must be a date formatted as " + fe.Param()
	case "hour":
		return "must be a time formatted as HH:MM or HH:MM:SS"
	case "flag":
		return "must be true, false, 1 or 0"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "failed on " + fe.Tag()
	}
}
