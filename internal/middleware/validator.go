package middleware

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var phoneRe = regexp.MustCompile(`^[0-9]{10}$`)

// RequestValidator adapts go-playground/validator to echo.Validator. Besides
// the built-in tags it knows "phone10": exactly ten digits.
type RequestValidator struct {
	v *validator.Validate
}

// NewRequestValidator returns a validator with the custom tags registered.
func NewRequestValidator() *RequestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("phone10", func(fl validator.FieldLevel) bool {
		return phoneRe.MatchString(fl.Field().String())
	})
	return &RequestValidator{v: v}
}

// Validate implements echo.Validator.
func (rv *RequestValidator) Validate(i any) error {
	return rv.v.Struct(i)
}
