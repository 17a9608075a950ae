package service

import (
	"errors"

	"github.com/stemsi/exstem-paper/internal/validator"
)

var (
	ErrNothingToUndo      = errors.New("nothing to undo")
	ErrUnknownFormat      = errors.New("unknown render format")
	ErrActionNotAllowed   = errors.New("only reorder actions can be applied to a draft directly")
	ErrLocalEntity        = errors.New("entity is unknown to the API")
	ErrTemplateIncomplete = errors.New("template could not be copied to the API")
)

// ValidationError carries field-level problems found before any API call.
type ValidationError struct {
	Fields validator.FieldErrors
}

func (e *ValidationError) Error() string {
	return e.Fields.Error()
}

// asValidation converts validator.FieldErrors into a *ValidationError.
func asValidation(err error) error {
	var fe validator.FieldErrors
	if errors.As(err, &fe) {
		return &ValidationError{Fields: fe}
	}
	return err
}
