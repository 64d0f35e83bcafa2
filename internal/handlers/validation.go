package handlers

import (
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
)

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ParseValidationErrors converts binding errors to user-friendly format.
// Malformed JSON yields a single entry without a field.
func ParseValidationErrors(err error) []ValidationError {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		result := make([]ValidationError, 0, len(validationErrors))
		for _, fieldError := range validationErrors {
			result = append(result, ValidationError{
				Field:   fieldError.Field(),
				Message: getErrorMessage(fieldError),
			})
		}
		return result
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return []ValidationError{{Field: typeErr.Field, Message: typeErr.Field + " has the wrong type"}}
	}

	return []ValidationError{{Message: "Malformed request body"}}
}

func getErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		if fe.Kind().String() == "int" {
			return fe.Field() + " must be at least " + fe.Param()
		}
		return fe.Field() + " must be at least " + fe.Param() + " characters"
	case "max":
		if fe.Kind().String() == "int" {
			return fe.Field() + " must be at most " + fe.Param()
		}
		return fe.Field() + " must not exceed " + fe.Param() + " characters"
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	case "uuid":
		return fe.Field() + " must be a valid identifier"
	default:
		return fe.Field() + " is invalid"
	}
}
