// Package validation checks request payloads with go-playground/validator and
// converts failures into apperr validation errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"todoapi/internal/apperr"

	"github.com/go-playground/validator/v10"
)

const (
	minPasswordLen = 8
	maxPasswordLen = 128
)

// Normalizer is implemented by inputs that trim or canonicalize themselves
// before validation.
type Normalizer interface {
	Normalize()
}

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New()

	// Report json names so the response matches the request body.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	if err := v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return ValidPassword(fl.Field().String())
	}); err != nil {
		panic(err)
	}

	return &Validator{validate: v}
}

// ValidPassword reports whether p is 8 to 128 printable ASCII characters
// without surrounding whitespace and contains at least one letter and one
// digit.
func ValidPassword(p string) bool {
	if len(p) < minPasswordLen || len(p) > maxPasswordLen {
		return false
	}
	if strings.TrimSpace(p) != p {
		return false
	}

	var letter, digit bool
	for _, r := range p {
		if r < ' ' || r > '~' {
			return false
		}
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return letter && digit
}

// Struct normalizes s when it implements Normalizer and validates it.
func (v *Validator) Struct(s any) error {
	if n, ok := s.(Normalizer); ok {
		n.Normalize()
	}

	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Internal(err)
	}

	fields := make(map[string]string, len(verrs))
	for _, e := range verrs {
		fields[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return apperr.Validation("Validation failed", fields)
}
