package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers missing forms and fields, and unpublished forms
	// requested through the public surface.
	ErrNotFound = errors.New("not found")

	// ErrAuthRequired means the form demands an authenticated identity and
	// none was supplied.
	ErrAuthRequired = errors.New("authentication required")

	// ErrIncompleteReorder means a reorder list does not contain exactly the
	// current field-id set.
	ErrIncompleteReorder = errors.New("reorder list does not match field set")

	// ErrAlreadyRegistered is a success-equivalent condition: the identity is
	// registered for the event already, so no duplicate record was created.
	ErrAlreadyRegistered = errors.New("already registered")
)

// ValidationError names the first required field found empty.
type ValidationError struct {
	FieldID string
	Label   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("required field %q is empty", e.Label)
}
