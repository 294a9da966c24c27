package models

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator"
)

// Checker is implemented by schemas that need rules beyond struct tags.
// Check runs only after the tag rules pass.
type Checker interface {
	Check() *ValidationError
}

type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return &Validator{validate: v}
}

// Validate returns a *ValidationError keyed by json field names, or nil.
func (v *Validator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		fieldErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		out := &ValidationError{}
		for _, fe := range fieldErrs {
			out.Add(fe.Field(), message(fe))
		}
		return out
	}
	if c, ok := i.(Checker); ok {
		return c.Check().OrNil()
	}
	return nil
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return MsgRequired
	case "email":
		return MsgInvalidEmail
	case "min":
		if fe.Kind() == reflect.String {
			return MsgMinLength(fe.Param())
		}
		return MsgMinValue(fe.Param())
	case "max":
		return MsgMaxValue(fe.Param())
	case "url":
		return "Enter a valid URL."
	default:
		return "Invalid value."
	}
}
