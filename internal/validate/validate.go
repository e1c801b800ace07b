// Package validate checks the login and registration forms before they
// reach the session manager.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	hasNumber    = regexp.MustCompile(`\d`)
	hasUpper     = regexp.MustCompile(`[A-Z]`)
	hasLower     = regexp.MustCompile(`[a-z]`)
	hasSpecial   = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
	passwordRule = map[string]*regexp.Regexp{
		"hasnumber":  hasNumber,
		"hasupper":   hasUpper,
		"haslower":   hasLower,
		"hasspecial": hasSpecial,
	}
)

// LoginForm is the sign-in screen's input.
type LoginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// RegisterForm is the sign-up screen's input.
type RegisterForm struct {
	Name            string `json:"name" validate:"required,min=2"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8,hasnumber,hasupper,haslower,hasspecial"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// Errors maps a form field (by JSON name) to its first failing message.
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, e[f])
	}
	return strings.Join(msgs, "; ")
}

// Validator wraps a configured go-playground validator.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return strings.ToLower(fld.Name)
		}
		return name
	})
	for tag, re := range passwordRule {
		re := re
		// Registration only fails on an empty tag.
		_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return re.MatchString(fl.Field().String())
		})
	}

	return &Validator{validate: v}
}

// Validate returns nil or an Errors value.
func (v *Validator) Validate(form any) error {
	if err := v.validate.Struct(form); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return formatValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func formatValidationErrors(errs validator.ValidationErrors) Errors {
	out := make(Errors, len(errs))
	for _, err := range errs {
		field := err.Field()
		if _, seen := out[field]; seen {
			continue
		}
		out[field] = message(field, err.Tag(), err.Param())
	}
	return out
}

func message(field, tag, param string) string {
	label := labels[field]
	if label == "" {
		label = field
	}
	switch tag {
	case "required":
		return label + " is required"
	case "email":
		return "Invalid email address"
	case "min":
		if field == "name" {
			return "Name is too short"
		}
		return fmt.Sprintf("%s must be at least %s characters", label, param)
	case "eqfield":
		return "Passwords must match"
	case "hasnumber":
		return "Password must contain at least one number"
	case "hasupper":
		return "Password must contain at least one uppercase letter"
	case "haslower":
		return "Password must contain at least one lowercase letter"
	case "hasspecial":
		return "Password must contain at least one special character"
	default:
		return fmt.Sprintf("%s failed validation for %s", label, tag)
	}
}

var labels = map[string]string{
	"name":            "Name",
	"email":           "Email",
	"password":        "Password",
	"confirmPassword": "Confirm password",
}
