package validator

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// New builds the validator used on booking and admin request DTOs.
//
// Beyond the standard tags it registers "notblank", which rejects strings
// that are empty after trimming. Treatment and option ids come from URL
// slugs on the booking form, so "   " must fail where "hydrafacial" passes;
// the builtin "required" only catches the empty string.
func New() *validator.Validate {
	v := validator.New()

	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		str, ok := fl.Field().Interface().(string)
		if !ok {
			// Non-string fields are out of scope for this rule.
			return true
		}
		return strings.TrimSpace(str) != ""
	})

	return v
}
