package chi

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report JSON field names instead of Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct returns a client-facing message for the first invalid field.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("invalid request: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, e.Field()+" "+formatValidationError(e))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must contain at least " + e.Param() + " entries"
	case "max":
		return "must be at most " + e.Param() + " characters"
	case "gt":
		return "must be greater than " + e.Param()
	case "lte":
		return "must be at most " + e.Param()
	case "oneof":
		return "must be one of: png, svg, eps"
	case "excludesall":
		return "must not contain path separators"
	default:
		return "is invalid"
	}
}
