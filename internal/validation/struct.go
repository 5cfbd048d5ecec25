package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mindtab/mindtab/internal/model"
)

// Error is rejected user input. Handlers answer it with 400.
type Error struct {
	msg string
}

func NewError(msg string) error {
	return &Error{msg: msg}
}

func (e *Error) Error() string {
	return e.msg
}

// IsInvalid reports whether err is, or wraps, an input validation error.
func IsInvalid(err error) bool {
	var e *Error
	return errors.As(err, &e)
}

// validate is shared by all request types. Field names in errors are the JSON names.
var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation("date", validateDate)
	_ = validate.RegisterValidation("goalstatus", func(fl validator.FieldLevel) bool {
		return model.IsGoalStatus(fl.Field().String())
	})
}

// validateDate accepts YYYY-MM-DD calendar dates.
func validateDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(model.DateLayout, fl.Field().String())
	return err == nil
}

// Struct validates v against its validate tags and returns one readable
// error listing every failed field.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return NewError(err.Error())
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return NewError(strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be >= %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "url", "http_url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "date":
		return fmt.Sprintf("%s must be a date (YYYY-MM-DD)", field)
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
	}
}
