// Package validator wraps go-playground/validator with the register's
// custom rules and flattens validation failures into single, user-facing
// error messages.
package validator

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	global *validator.Validate

	// personname: letters, marks, spaces, apostrophes and hyphens are fine;
	// digits and the QR separator '|' are not.
	digitOrPipe = regexp.MustCompile(`[0-9|]`)
)

const (
	ErrInvalidFormat     = "Invalid format"
	ErrFieldRequired     = "Field is required"
	ErrFieldExceedsMax   = "Field exceeds maximum length"
	ErrFieldBelowMin     = "Field is below minimum length"
	ErrUnknownValidation = "Unknown validation error"
)

func init() {
	SetValidator(New())
}

// New builds a validator with the register's custom rules installed.
func New() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("personname", validatePersonName)
	_ = v.RegisterValidation("role", validateRole)
	return v
}

// SetValidator swaps the package-level instance, mostly for tests.
func SetValidator(v *validator.Validate) {
	global = v
}

// Validator returns the package-level instance.
func Validator() *validator.Validate {
	return global
}

func validatePersonName(fl validator.FieldLevel) bool {
	s := strings.TrimSpace(fl.Field().String())
	return s != "" && !digitOrPipe.MatchString(s)
}

func validateRole(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "Adult", "Parent", "Child":
		return true
	}
	return false
}

// Validate checks a struct and returns a single flattened error, or nil.
func Validate(structure any) error {
	return parseValidationErrors(Validator().Struct(structure))
}

func parseValidationErrors(err error) error {
	if err == nil {
		return nil
	}
	var vErrors validator.ValidationErrors
	if !errors.As(err, &vErrors) || len(vErrors) == 0 {
		return nil
	}
	ve := vErrors[0]
	var msg string
	switch ve.Tag() {
	case "required":
		msg = ErrFieldRequired
	case "email":
		msg = ErrInvalidFormat
	case "personname":
		msg = "Names cannot contain numbers or the '|' character"
	case "role":
		msg = "Role must be Adult, Parent or Child"
	case "max":
		msg = ErrFieldExceedsMax
	case "min":
		msg = ErrFieldBelowMin
	default:
		msg = ErrUnknownValidation
	}
	return errors.New(msg + ": " + ve.Field())
}
