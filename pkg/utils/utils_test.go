package utils

import (
	"testing"
	"time"

	pkgerrors "peoplenet/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Name     string `json:"name" validate:"required,max=10"`
	Strength string `json:"strength" validate:"omitempty,oneof=fleeting casual core"`
	Email    string `json:"email" validate:"omitempty,email"`
}

func TestValidateStruct(t *testing.T) {
	require.NoError(t, ValidateStruct(sampleRequest{Name: "Alice", Strength: "core"}))

	err := ValidateStruct(sampleRequest{Strength: "bogus", Email: "nope"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
	assert.Contains(t, err.Error(), "name is required")
	assert.Contains(t, err.Error(), "strength must be one of")
	assert.Contains(t, err.Error(), "email must be a valid email")
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-05")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDate("2024-03-05T10:00:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, 8, d.Hour())

	d, err = ParseDate("")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	_, err = ParseDate("yesterday")
	assert.Error(t, err)

	assert.Equal(t, "", FormatDate(time.Time{}))
}
