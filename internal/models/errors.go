package models

import (
	"fmt"
	"sort"
	"strings"
)

const (
	MsgRequired      = "This field is required."
	MsgBlank         = "This field may not be blank."
	MsgInvalidEmail  = "Enter a valid email address."
	MsgInvalidNumber = "A valid number is required."
	MsgInvalidImage  = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
	MsgNoFile        = "No file was submitted."
	MsgEmailTaken    = "user with this email already exists."
	MsgBadCredential = "Unable to authenticate with provided credentials."
	MsgPricePlaces   = "Ensure that there are no more than 2 decimal places."
	NonFieldErrors   = "non_field_errors"
)

// ValidationError maps a wire field name to its messages. It renders as the
// 400 response body.
type ValidationError struct {
	Fields map[string][]string
}

func NewValidationError(field, msg string) *ValidationError {
	e := &ValidationError{}
	e.Add(field, msg)
	return e
}

func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

func (e *ValidationError) Empty() bool {
	return e == nil || len(e.Fields) == 0
}

// OrNil lets callers return a nil error interface when nothing was added.
func (e *ValidationError) OrNil() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], " ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func MsgMinLength(n string) string {
	return fmt.Sprintf("Ensure this field has at least %s characters.", n)
}

func MsgMinValue(n string) string {
	return fmt.Sprintf("Ensure this value is greater than or equal to %s.", n)
}

func MsgMaxValue(n string) string {
	return fmt.Sprintf("Ensure this value is less than or equal to %s.", n)
}

func MsgInvalidPK(id uint64) string {
	return fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id)
}
