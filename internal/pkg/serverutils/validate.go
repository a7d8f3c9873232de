package serverutils

import (
	"fmt"
	"strings"

	"leave-auth-be/internal/entity"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequest runs struct tag validation and converts the first
// failure into a domain validation error.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrors) == 0 {
		return entity.NewValidationError("", "invalid request body")
	}

	first := validationErrors[0]
	field := strings.ToLower(first.Field())

	var message string
	switch first.Tag() {
	case "required":
		message = "is required"
	case "email":
		message = "must be a valid email"
	case "min":
		message = fmt.Sprintf("must be at least %s characters", first.Param())
	case "oneof":
		message = fmt.Sprintf("must be one of: %s", first.Param())
	case "datetime":
		message = fmt.Sprintf("must match format %s", first.Param())
	default:
		message = fmt.Sprintf("failed %s validation", first.Tag())
	}

	return entity.NewValidationError(field, message)
}
