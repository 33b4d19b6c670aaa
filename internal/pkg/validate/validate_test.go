package validate

import (
	"testing"

	"github.com/go-otp-auth/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"verification_code" validate:"required,numeric"`
	Note  string `validate:"omitempty,max=3"`
}

func TestStruct_Valid(t *testing.T) {
	require.NoError(t, Struct(&sample{Email: "a@b.com", Code: "123456"}))
}

func TestStruct_ReportsEveryFieldByJSONName(t *testing.T) {
	err := Struct(&sample{Email: "nope", Code: "12ab", Note: "long"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBadRequest)
	assert.Contains(t, err.Error(), "field 'email' failed 'email'")
	assert.Contains(t, err.Error(), "field 'verification_code' failed 'numeric'")
	assert.Contains(t, err.Error(), "field 'Note' failed 'max'")
}

func TestStruct_Required(t *testing.T) {
	err := Struct(&sample{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field 'email' failed 'required'")
}
