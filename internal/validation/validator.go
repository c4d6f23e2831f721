// Package validation checks submitted forms and turns failures into per-field messages.
package validation

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/go-playground/form/v4"
	"github.com/go-playground/validator/v10"
)

// Errors maps a form field name to a human readable message.
type Errors map[string]string

func (e Errors) Add(field, msg string) {
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

func (e Errors) Merge(other map[string]string) {
	for k, v := range other {
		e.Add(k, v)
	}
}

var (
	once     sync.Once
	validate *validator.Validate
	decoder  *form.Decoder

	mobileRe = regexp.MustCompile(`^01[3-9][0-9]{8}$`)
)

func instance() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("mobile", func(fl validator.FieldLevel) bool {
			return mobileRe.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
			return StrongPassword(fl.Field().String())
		})
		_ = v.RegisterValidation("year", func(fl validator.FieldLevel) bool {
			y := int(fl.Field().Int())
			return y >= 1950 && y <= time.Now().Year()+1
		})
		v.RegisterStructValidation(experienceDates, ExperienceForm{})
		validate = v

		decoder = form.NewDecoder()
	})
	return validate
}

// StrongPassword requires 8-64 characters with at least one letter and one digit.
func StrongPassword(s string) bool {
	n := len([]rune(s))
	if n < 8 || n > 64 {
		return false
	}
	var letter, digit bool
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return letter && digit
}

// Decode fills dst from submitted form values using the `form` struct tags.
func Decode(values url.Values, dst any) Errors {
	instance()
	err := decoder.Decode(dst, values)
	if err == nil {
		return nil
	}
	out := Errors{}
	var de form.DecodeErrors
	if errors.As(err, &de) {
		for field := range de {
			out.Add(field, "is invalid")
		}
		return out
	}
	out.Add("_form", "could not read the submitted form")
	return out
}

// Check validates v and returns nil when it passes.
func Check(v any) Errors {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return Errors{"_form": err.Error()}
	}
	out := Errors{}
	for _, fe := range ves {
		out.Add(fe.Field(), message(fe))
	}
	return out
}

// Bind decodes then validates; decode errors win over rule errors for the same field.
func Bind(values url.Values, dst any) Errors {
	errs := Decode(values, dst)
	if ce := Check(dst); ce != nil {
		if errs == nil {
			errs = Errors{}
		}
		errs.Merge(ce)
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func message(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	isList := fe.Kind() == reflect.Slice
	switch fe.Tag() {
	case "required":
		if fe.Kind() == reflect.Bool {
			return "must be accepted"
		}
		return "is required"
	case "email":
		return "must be a valid email address"
	case "mobile":
		return "must be an 11-digit mobile number starting with 01"
	case "password":
		return "must be 8-64 characters with at least one letter and one digit"
	case "eqfield":
		return "does not match"
	case "nefield":
		return "must be different from the current password"
	case "datetime":
		return "must be a date (YYYY-MM-DD)"
	case "numeric":
		return "must contain digits only"
	case "year":
		return "must be a valid year"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "not_before_start":
		return "must not be before the start date"
	case "min", "gte":
		switch {
		case isString:
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		case isList:
			return fmt.Sprintf("must have at least %s items", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max", "lte":
		switch {
		case isString:
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		case isList:
			return fmt.Sprintf("must have at most %s items", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	}
	return "is invalid"
}

func experienceDates(sl validator.StructLevel) {
	var f ExperienceForm
	switch v := sl.Current().Interface().(type) {
	case ExperienceForm:
		f = v
	case *ExperienceForm:
		f = *v
	default:
		return
	}
	if f.To == "" || f.From == "" {
		return
	}
	from, err1 := time.Parse(DateLayout, f.From)
	to, err2 := time.Parse(DateLayout, f.To)
	if err1 != nil || err2 != nil {
		return
	}
	if to.Before(from) {
		sl.ReportError(f.To, "to", "To", "not_before_start", "")
	}
}
