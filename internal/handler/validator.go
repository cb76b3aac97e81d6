package handler

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	nameRe   = regexp.MustCompile(`^[a-zA-Z\s'-]+$`)
	digitsRe = regexp.MustCompile(`^\d+$`)
	expiryRe = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)
	cvvRe    = regexp.MustCompile(`^\d{3}$`)
	phoneStr = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")
)

// ValidationError maps request fields (by their JSON name) to the rule
// they broke.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "validation failed" }

// RequestValidator plugs go-playground/validator into echo's c.Validate.
type RequestValidator struct {
	v *validator.Validate
}

// NewValidator registers the booking-specific rules: fullname, phone10,
// card16, expiry and cvv.
func NewValidator() *RequestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("fullname", func(fl validator.FieldLevel) bool {
		s := strings.TrimSpace(fl.Field().String())
		return len(s) >= 2 && nameRe.MatchString(s)
	})
	_ = v.RegisterValidation("phone10", func(fl validator.FieldLevel) bool {
		s := phoneStr.Replace(fl.Field().String())
		return len(s) == 10 && digitsRe.MatchString(s)
	})
	_ = v.RegisterValidation("card16", func(fl validator.FieldLevel) bool {
		s := strings.ReplaceAll(fl.Field().String(), " ", "")
		return len(s) == 16 && digitsRe.MatchString(s)
	})
	_ = v.RegisterValidation("expiry", func(fl validator.FieldLevel) bool {
		return expiryRe.MatchString(strings.TrimSpace(fl.Field().String()))
	})
	_ = v.RegisterValidation("cvv", func(fl validator.FieldLevel) bool {
		return cvvRe.MatchString(fl.Field().String())
	})
	return &RequestValidator{v: v}
}

// Validate implements echo.Validator.
func (rv *RequestValidator) Validate(i interface{}) error {
	err := rv.v.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		out.Fields[fe.Field()] = fe.Tag()
	}
	return out
}

// normalizePhone strips the separators accepted by phone10.
func normalizePhone(s string) string { return phoneStr.Replace(strings.TrimSpace(s)) }
