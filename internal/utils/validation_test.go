package contextutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidEmail(t *testing.T) {
	for _, email := range []string{
		"customer@example.com",
		"jane.doe+feedback@example.co.uk",
		"manager@support.example.com",
	} {
		assert.True(t, IsValidEmail(email), email)
	}

	for _, email := range []string{
		"",
		"customer",
		"@example.com",
		"customer@",
		"customer@example",
		"customer@example..com",
		"jane doe@example.com",
	} {
		assert.False(t, IsValidEmail(email), email)
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "jane@example.com", NormalizeEmail("  Jane@Example.COM "))
	assert.Equal(t, NormalizeEmail("JANE@example.com"), NormalizeEmail("jane@EXAMPLE.com"))
	assert.Equal(t, "", NormalizeEmail("   "))
}

func TestValidateStruct(t *testing.T) {
	type registration struct {
		Name  string `validate:"required"`
		Email string `validate:"required,email"`
	}

	assert.NoError(t, ValidateStruct(registration{Name: "Jane", Email: "jane@example.com"}))

	err := ValidateStruct(registration{Name: "Jane", Email: "not-an-email"})
	var appErr *AppError
	require.True(t, AsError(err, &appErr))
	assert.Equal(t, ErrorCodeValidationFailed, appErr.Code)
	assert.Equal(t, "Invalid email", appErr.Message)
	assert.Equal(t, "email", appErr.Details)

	err = ValidateStruct(registration{Email: "jane@example.com"})
	require.True(t, AsError(err, &appErr))
	assert.Equal(t, "Invalid name", appErr.Message)
	assert.Equal(t, "required", appErr.Details)
}

func TestValidateStruct_NonStruct(t *testing.T) {
	err := ValidateStruct(42)
	assert.Equal(t, ErrorCodeInvalidInput, GetErrorCode(err))
}
