package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Title  string `json:"title" validate:"required,max=5"`
	Status string `json:"status" validate:"omitempty,goalstatus"`
	Day    string `json:"day" validate:"omitempty,date"`
}

func TestStruct(t *testing.T) {
	require.NoError(t, Struct(sample{Title: "ok", Status: "archived", Day: "2026-02-28"}))

	err := Struct(sample{Status: "done", Day: "2026-02-30"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title is required")
	assert.Contains(t, err.Error(), "status is invalid (goalstatus)")
	assert.Contains(t, err.Error(), "day must be a date")

	err = Struct(sample{Title: "too long"})
	require.Error(t, err)
	assert.Equal(t, "title must be at most 5", err.Error())
	assert.True(t, IsInvalid(err))
	assert.True(t, IsInvalid(ValidateName("")))
}
