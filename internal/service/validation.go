package service

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"movexa_cms/internal/utils"

	"github.com/go-playground/validator/v10"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// messages maps "<json field>.<rule>" to the text returned to clients
var messages = map[string]string{
	"username.min":             "Username must be at least 3 characters",
	"password.min":             "Password must be at least 6 characters",
	"password.bcryptlen":       "Password cannot exceed 72 bytes",
	"email.emailfmt":           "Invalid email format",
	"currentPassword.required": "Current password and new password are required",
	"newPassword.required":     "Current password and new password are required",
	"newPassword.min":          "New password must be at least 6 characters",
	"newPassword.bcryptlen":    "New password cannot exceed 72 bytes",
	"title.required":           "Service title is required",
	"title.min":                "Service title is required",
	"title.max":                "Title cannot exceed 100 characters",
	"description.required":     "Service description is required",
	"description.min":          "Service description is required",
	"description.max":          "Description cannot exceed 500 characters",
	"section.required":         "Section is required",
	"section.max":              "Section cannot exceed 100 characters",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("emailfmt", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	// counted in bytes, bcrypt refuses anything longer whatever the encoding
	if err := v.RegisterValidation("bcryptlen", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= utils.MaxPasswordBytes
	}); err != nil {
		panic(err)
	}
	return v
}

// validateFirst reports only the first violated rule, in field order
func validateFirst(s any) error {
	msgs, err := check(s)
	if err != nil || len(msgs) == 0 {
		return err
	}
	return newValidationError(msgs[0])
}

// validateAll reports every violated rule
func validateAll(s any) error {
	msgs, err := check(s)
	if err != nil || len(msgs) == 0 {
		return err
	}
	return newValidationError(msgs...)
}

func check(s any) ([]string, error) {
	err := validate.Struct(s)
	if err == nil {
		return nil, nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, fmt.Errorf("failed to validate input: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg, ok := messages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = fmt.Sprintf("%s is invalid", fe.Field())
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}
