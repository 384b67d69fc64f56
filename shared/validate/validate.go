// Package validate wires up the go-playground validator used by the HTTP
// handlers, including the platform's credential rules and English
// translations for field-level error details.
package validate

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	locale "github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	translations "github.com/go-playground/validator/v10/translations/en"
)

var usernameRegexp = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// Validator bundles a configured validator instance with its translator.
type Validator struct {
	validate *validator.Validate
	trans    ut.Translator
}

// New builds a Validator with the custom `passwordstrength` and `username`
// rules registered. Errors are reported under the field's json tag name.
func New() (*Validator, error) {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("passwordstrength", validatePasswordStrength); err != nil {
		return nil, err
	}
	if err := v.RegisterValidation("username", validateUsername); err != nil {
		return nil, err
	}

	english := locale.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")

	if err := translations.RegisterDefaultTranslations(v, trans); err != nil {
		return nil, err
	}

	customMessages := map[string]string{
		"passwordstrength": "{0} must contain an uppercase letter, a lowercase letter and a digit",
		"username":         "{0} may only contain letters, digits and underscores",
	}
	for tag, message := range customMessages {
		if err := registerTranslation(v, trans, tag, message); err != nil {
			return nil, err
		}
	}

	return &Validator{validate: v, trans: trans}, nil
}

// Struct validates s and, on failure, returns a map of json field name to a
// translated message suitable for the error envelope's details.
func (v *Validator) Struct(s any) (map[string]string, error) {
	err := v.validate.Struct(s)
	if err == nil {
		return nil, nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return nil, err
	}

	details := make(map[string]string, len(validationErrs))
	for _, fieldErr := range validationErrs {
		details[fieldErr.Field()] = fieldErr.Translate(v.trans)
	}

	return details, err
}

func registerTranslation(v *validator.Validate, trans ut.Translator, tag, message string) error {
	return v.RegisterTranslation(tag, trans,
		func(ut ut.Translator) error {
			return ut.Add(tag, message, true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, err := ut.T(tag, fe.Field())
			if err != nil {
				return fe.Error()
			}
			return t
		},
	)
}

func validatePasswordStrength(fl validator.FieldLevel) bool {
	var hasUpper, hasLower, hasDigit bool
	for _, r := range fl.Field().String() {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	return hasUpper && hasLower && hasDigit
}

func validateUsername(fl validator.FieldLevel) bool {
	return usernameRegexp.MatchString(fl.Field().String())
}
