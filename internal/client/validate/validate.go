// Package validate performs pre-flight validation of user-entered forms, so
// obviously bad input is rejected before the network hop. Field names in the
// returned map follow the json tags, matching what the server reports.
package validate

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var v = newValidator()

func newValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(useJSONTagNames)
	return validate
}

func useJSONTagNames(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

// LoginForm mirrors the login screen: the login field accepts an email or a
// username.
type LoginForm struct {
	Login    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RegisterForm struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"fullName" validate:"omitempty"`
	Phone    string `json:"phone" validate:"omitempty"`
}

type ProfileForm struct {
	Username string `json:"username" validate:"required,min=3"`
	FullName string `json:"fullName" validate:"omitempty"`
	Phone    string `json:"phone" validate:"omitempty"`
}

type PasswordChangeForm struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
	Confirm     string `json:"confirm" validate:"required,eqfield=NewPassword"`
}

// Struct validates a form and returns per-field messages, or nil when the
// form is valid.
func Struct(form any) map[string]string {
	err := v.Struct(form)
	if err == nil {
		return nil
	}

	var verr validator.ValidationErrors
	if !errors.As(err, &verr) {
		return map[string]string{"form": err.Error()}
	}

	fields := make(map[string]string, len(verr))
	for _, fe := range verr {
		fields[fe.Field()] = message(fe)
	}
	return fields
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return "invalid email address"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters"
	case "eqfield":
		return "passwords do not match"
	default:
		return "invalid " + fe.Field()
	}
}
