// internal/services/errors.go
package services

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/footycollect/footycollect-api/internal/utils"
)

var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation
	ErrValidationFailed = errors.New("validation failed")
	ErrPhotoLimit       = invalidError("item photo limit reached")
	ErrUnsupportedImage = invalidError("unsupported image type")
	ErrImageTooLarge    = invalidError("image exceeds maximum size")

	// Authorization
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")

	// Conflicts wrap ErrConflict.
	ErrConflict       = errors.New("conflict")
	ErrColorExists    = conflictError("color already exists")
	ErrSizeExists     = conflictError("size already exists")
	ErrColorInUse     = conflictError("color is referenced by items")
	ErrSizeInUse      = conflictError("size is referenced by items")
	ErrPhotoNotOnItem = conflictError("photo does not belong to this item")

	// Entity-specific not-found errors wrap ErrNotFound.
	ErrItemNotFound  = notFoundError("item not found")
	ErrPhotoNotFound = notFoundError("photo not found")
	ErrColorNotFound = notFoundError("color not found")
	ErrSizeNotFound  = notFoundError("size not found")
	ErrUserNotFound  = notFoundError("user not found")

	ErrServiceNotRegistered = errors.New("service not registered")
)

type sentinel struct {
	msg    string
	parent error
}

func (e *sentinel) Error() string { return e.msg }
func (e *sentinel) Unwrap() error { return e.parent }

func notFoundError(msg string) error {
	return &sentinel{msg: msg, parent: ErrNotFound}
}

func invalidError(msg string) error {
	return &sentinel{msg: msg, parent: ErrValidationFailed}
}

func conflictError(msg string) error {
	return &sentinel{msg: msg, parent: ErrConflict}
}

// ValidationError carries per-field problems and matches ErrValidationFailed.
type ValidationError struct {
	Fields []utils.ValidationError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidationFailed.Error()
	}
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return ErrValidationFailed.Error() + ": " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidationFailed }

// newValidationError builds a ValidationError for a single field.
func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []utils.ValidationError{{Field: field, Tag: "invalid", Message: message}}}
}

// validate runs struct tags and converts failures into a ValidationError.
func validate(req interface{}) error {
	err := utils.ValidateStruct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return &ValidationError{Fields: utils.GetValidationErrors(err)}
	}
	return &ValidationError{Fields: []utils.ValidationError{{Field: "request", Tag: "invalid", Message: err.Error()}}}
}
