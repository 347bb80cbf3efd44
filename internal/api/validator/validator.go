package validator

import (
	"errors"
	"reflect"
	"strings"

	playgroundvalidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// ValidationErrors wraps the validator's ValidationErrors
type ValidationErrors []playgroundvalidator.FieldError

func (ve ValidationErrors) Error() string {
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fe.Field()+" failed "+fe.Tag())
	}
	return strings.Join(msgs, "; ")
}

// CustomValidator wraps go-playground/validator
type CustomValidator struct {
	validator *playgroundvalidator.Validate
}

// NewValidator creates a new validator instance
func NewValidator() echo.Validator {
	v := playgroundvalidator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("audience_level", validateAudienceLevel); err != nil {
		return nil
	}
	if err := v.RegisterValidation("sort_order", validateSortOrder); err != nil {
		return nil
	}

	return &CustomValidator{validator: v}
}

func validateAudienceLevel(fl playgroundvalidator.FieldLevel) bool {
	level := fl.Field().String()
	return level == "INTERNAL" || level == "PARTNER" || level == "END_USER"
}

func validateSortOrder(fl playgroundvalidator.FieldLevel) bool {
	sort := fl.Field().String()
	return sort == "" || sort == "newest" || sort == "oldest"
}

// Validate implements echo.Validator interface
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		var validationErrors playgroundvalidator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return ValidationErrors(validationErrors)
		}
		return err
	}
	return nil
}
