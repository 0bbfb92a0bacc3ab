package schema

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

const (
	TagHasUpper   = "hasupper"
	TagHasDigit   = "hasdigit"
	TagHasSpecial = "hasspecial"
)

var (
	upperPattern   = regexp.MustCompile(`[A-Z]`)
	digitPattern   = regexp.MustCompile(`[0-9]`)
	specialPattern = regexp.MustCompile(`[^a-zA-Z0-9]`)
)

// NewValidator returns a validator with the password character-class tags registered.
func NewValidator() *validator.Validate {
	v := validator.New()
	mustRegister(v, TagHasUpper, upperPattern)
	mustRegister(v, TagHasDigit, digitPattern)
	mustRegister(v, TagHasSpecial, specialPattern)
	return v
}

func mustRegister(v *validator.Validate, tag string, pattern *regexp.Regexp) {
	err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return pattern.MatchString(fl.Field().String())
	})
	if err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}
