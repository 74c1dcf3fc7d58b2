package fundconfig

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/wonny/fundfactor/internal/contracts"
)

// ValidationError reports the first rejected field of a definition
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is match contracts.ErrInvalidConfiguration
func (e ValidationError) Unwrap() error {
	return contracts.ErrInvalidConfiguration
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field presence with struct tags, then the fund rules
// (currency, region, spreadsheet extension)
func Validate(f *Fund) error {
	if err := validate.Struct(f); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return ValidationError{Field: strings.ToLower(fe.Field()), Message: describe(fe)}
		}
		return err
	}

	return f.Spec().Validate()
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "required_without":
		return fmt.Sprintf("required when %s is empty", strings.ToLower(fe.Param()))
	case "excluded_with":
		return fmt.Sprintf("cannot be combined with %s", strings.ToLower(fe.Param()))
	case "gte":
		return fmt.Sprintf("must be >= %s", fe.Param())
	default:
		return fmt.Sprintf("failed %q", fe.Tag())
	}
}
