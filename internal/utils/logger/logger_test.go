package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorAppliesFormatArgs(t *testing.T) {
	log := New("test")
	cause := errors.New("boom")

	err := log.Error("failed to repair %q in folder %s", cause, "Syllabus", "f-1")
	require.Error(t, err)
	assert.Equal(t, `failed to repair "Syllabus" in folder f-1: boom`, err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestErrorWithoutArgs(t *testing.T) {
	log := New("test")
	cause := errors.New("boom")

	err := log.Error("failed to connect", cause)
	assert.Equal(t, "failed to connect: boom", err.Error())
}
