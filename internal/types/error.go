package types

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Error is the uniform failure envelope. Every handler-level failure is
// rendered as {success:false, message}, optionally with per-field detail.
type Error struct {
	Fields  *map[string]string `json:"fields,omitempty"`
	Message string             `json:"message"`
	Success bool               `json:"success"`
}

func StringError(err string) Error {
	return Error{Message: err}
}

func ValidationError(err error) Error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if ok {
		errorMap := make(map[string]string)
		for _, fieldError := range validationErrors {
			errorMap[fieldError.Field()] = fmt.Sprintf(
				"Failed to validate while checking condition: %s",
				fieldError.Tag(),
			)
		}

		return Error{Message: "validation error", Fields: &errorMap}
	}

	return Error{Message: "validation error"}
}
