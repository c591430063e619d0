package contextutils

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// IsValidEmail checks if an email address is valid using go-playground/validator
func IsValidEmail(email string) bool {
	return validate.Var(email, "email") == nil
}

// NormalizeEmail trims and lower-cases an address so it can be used as an ownership key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateStruct runs the `validate` struct tags on v and converts the first
// failing field into a VALIDATION_FAILED AppError.
func ValidateStruct(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return NewAppErrorWithCause(ErrorCodeValidationFailed, SeverityWarn,
				"Invalid "+strings.ToLower(fe.Field()), fe.Tag(), err)
		}
		return NewAppErrorWithCause(ErrorCodeInvalidInput, SeverityWarn, "Invalid input", "", err)
	}
	return nil
}
