package validation

import (
	"fmt"
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var nonDigits = regexp.MustCompile(`\D`)

// Register installs the custom binding tags on gin's validator engine.
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}

	if err := v.RegisterValidation("phone", validatePhone); err != nil {
		return err
	}
	return v.RegisterValidation("notblank", validateNotBlank)
}

// validatePhone accepts anything carrying 10 to 15 digits once punctuation is
// stripped, e.g. "(11) 98765-4321".
func validatePhone(fl validator.FieldLevel) bool {
	digits := nonDigits.ReplaceAllString(fl.Field().String(), "")
	return len(digits) >= 10 && len(digits) <= 15
}

var blank = regexp.MustCompile(`^\s*$`)

func validateNotBlank(fl validator.FieldLevel) bool {
	return !blank.MatchString(fl.Field().String())
}
