// internal/app/system/inputval/inputval.go
package inputval

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/labportal/internal/app/system/apierr"
	"github.com/dalemusser/labportal/internal/app/system/normalize"
	"github.com/go-playground/validator/v10"
)

// FieldError is one human-readable problem with one input field.
type FieldError struct {
	Field   string
	Message string
}

// Result collects the field errors from a Validate call.
type Result struct {
	Errors []FieldError
}

func (r *Result) HasErrors() bool { return len(r.Errors) > 0 }

// First returns the first message, or "".
func (r *Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// All joins every message with "; ".
func (r *Result) All() string {
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}

// Err returns nil when there are no errors, otherwise a validation error
// carrying the first message.
func (r *Result) Err() error {
	if !r.HasErrors() {
		return nil
	}
	return apierr.Validation("%s", r.First())
}

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		// Messages use the label tag, falling back to the json name.
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			if l := fld.Tag.Get("label"); l != "" {
				return l
			}
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
		_ = v.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
			return normalize.Day(fl.Field().String()) != ""
		})
		_ = v.RegisterValidation("attstatus", func(fl validator.FieldLevel) bool {
			return normalize.Status(fl.Field().String()) != ""
		})
		_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
			s := strings.TrimSpace(fl.Field().String())
			if s == "" {
				return true
			}
			_, err := time.Parse(normalize.DateLayout, s)
			return err == nil
		})

		validate = v
	})
	return validate
}

// Validate runs the struct's `validate` tags and converts failures into
// messages like "Group name is required.".
func Validate(s any) *Result {
	res := &Result{}
	err := instance().Struct(s)
	if err == nil {
		return res
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		res.Errors = append(res.Errors, FieldError{Message: err.Error()})
		return res
	}
	for _, fe := range verrs {
		res.Errors = append(res.Errors, FieldError{
			Field:   fe.StructField(),
			Message: message(fe),
		})
	}
	return res
}

func message(fe validator.FieldError) string {
	label := fe.Field()
	switch fe.Tag() {
	case "required", "notblank":
		return label + " is required."
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must have at most %s entries.", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters.", label, fe.Param())
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must have at least %s entries.", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s characters.", label, fe.Param())
	case "weekday":
		return label + " must be a weekday (Monday to Friday)."
	case "attstatus":
		return label + " must be Present or Absent."
	case "isodate":
		return label + " must be a date in YYYY-MM-DD format."
	default:
		return label + " is invalid."
	}
}
