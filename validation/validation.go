// Package validation turns tagged input structs into field-level violations.
package validation

import (
	"errors"
	"net/url"
	"reflect"
	"strings"

	"github.com/badoux/checkmail"
	"github.com/go-playground/validator/v10"
)

// Violations maps a field name (its json name) to a message code.
type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Add records code for field unless the field already has a violation.
func (v Violations) Add(field, code string) {
	if _, ok := v[field]; !ok {
		v[field] = code
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("mailbox", func(fl validator.FieldLevel) bool {
		return checkmail.ValidateFormat(fl.Field().String()) == nil
	})
	_ = v.RegisterValidation("weburl", func(fl validator.FieldLevel) bool {
		return IsWebURL(fl.Field().String())
	})
	return v
}

// IsWebURL reports whether s is an absolute http or https URL with a host.
func IsWebURL(s string) bool {
	u, err := url.ParseRequestURI(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Struct validates s against its `validate` tags. The result is never nil.
func Struct(s any) Violations {
	out := Violations{}
	err := validate.Struct(s)
	if err == nil {
		return out
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		out.Add("_", "invalid")
		return out
	}
	for _, fe := range fieldErrs {
		out.Add(fe.Field(), codeFor(fe))
	}
	return out
}

func codeFor(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "required"
	case "min":
		if isString {
			return "too_short"
		}
		return "out_of_range"
	case "max":
		if isString {
			return "too_long"
		}
		return "out_of_range"
	case "gte", "lte", "gt", "lt":
		return "out_of_range"
	case "mailbox", "email":
		return "invalid_email"
	case "weburl", "url":
		return "invalid_url"
	case "eqfield":
		return "mismatch"
	case "oneof":
		return "invalid_choice"
	}
	return "invalid"
}
