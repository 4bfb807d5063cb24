package common

import (
	"github.com/go-playground/validator"
)

var structValidator = validator.New()

// ValidateStruct checks the `validate` tags of a struct and of the structs nested in it.
func ValidateStruct(i interface{}) error {
	return structValidator.Struct(i)
}
