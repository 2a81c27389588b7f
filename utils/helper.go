package utils

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

func DuplicateError(column string) error {
	return fmt.Errorf("%w %s", ErrDuplicate, column)
}

// ProcessValidationErrors flattens gin binding failures into a
// field -> failed-tag map for the error response body.
func ProcessValidationErrors(err error) map[string]string {

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return map[string]string{"error": err.Error()}
	}

	errorResponse := make(map[string]string)

	for _, ve := range validationErrors {
		errorResponse[ve.Field()] = ve.Tag()
	}

	return errorResponse
}

func NewTrue() *bool {
	b := true
	return &b
}

func NewFalse() *bool {
	b := false
	return &b
}

func DereferencePtr[T any](ptr *T, fallback ...T) T {
	if ptr != nil {
		return *ptr
	}
	var zero T
	if len(fallback) > 0 {
		return fallback[0]
	}
	return zero
}
