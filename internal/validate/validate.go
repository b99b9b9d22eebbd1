// Package validate checks request structs against their `validate` tags
// and reports every failing field as an apperr violation.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"portfolio/internal/apperr"
)

var (
	once sync.Once
	v    *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		var err error
		if v, err = newValidator(); err != nil {
			panic(err)
		}
	})
	return v
}

// newValidator builds a validator that reports fields by their JSON names
// and knows the custom rules.
func newValidator() (*validator.Validate, error) {
	nv := validator.New(validator.WithRequiredStructEnabled())
	nv.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	if err := nv.RegisterValidation("trimmed_min", trimmedMin); err != nil {
		return nil, fmt.Errorf("register trimmed_min: %w", err)
	}
	return nv, nil
}

// trimmedMin is min= applied to the value with surrounding spaces removed.
func trimmedMin(fl validator.FieldLevel) bool {
	var n int
	if _, err := fmt.Sscan(fl.Param(), &n); err != nil {
		return false
	}
	return utf8.RuneCountInString(strings.TrimSpace(fl.Field().String())) >= n
}

// Struct validates s and returns the violations, or nil when s is valid.
func Struct(s any) *apperr.ValidationError {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}
	out := &apperr.ValidationError{}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		out.Add("", err.Error())
		return out
	}
	for _, fe := range fieldErrs {
		out.Add(fieldName(fe), message(fe))
	}
	return out
}

// fieldName drops the top-level struct name from the namespace.
func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min", "trimmed_min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s items", fe.Param())
		}
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at most %s items", fe.Param())
		}
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "url":
		return "must be an absolute URL"
	case "oneof":
		return "must be one of " + fe.Param()
	case "email":
		return "must be a valid email address"
	}
	return "is invalid"
}
