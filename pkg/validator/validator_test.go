package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
	Email    string `json:"email" validate:"omitempty,email"`
	Gender   string `json:"gender" validate:"omitempty,oneof=M F Other"`
}

func TestValidate(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(sample{Username: "drperez", Password: "secret123"}))

	err := v.Validate(sample{Password: "123"})
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "username is required")
		assert.Contains(t, err.Error(), "password must be at least 6 characters long")
	}

	err = v.Validate(&sample{Username: "a", Password: "secret123", Email: "nope", Gender: "X"})
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "email must be a valid email")
		assert.Contains(t, err.Error(), "gender must be one of [M F Other]")
	}
}
