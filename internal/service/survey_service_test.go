package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maggielii/heartwaves/internal/model"
)

func TestSanitizeAnswersExactOptionMatch(t *testing.T) {
	questions := []model.Question{
		{ID: "orthostatic", Prompt: "Do symptoms worsen when standing and improve when lying down?", Options: []string{"no", "unsure", "yes"}},
		{ID: "tachy_upright", Prompt: "Do you notice rapid heartbeat shortly after standing?", Options: []string{"no", "unsure", "yes"}},
	}

	kept := sanitizeAnswers(questions, map[string]string{
		"orthostatic":   "yes",
		"tachy_upright": "YES",
		"made_up":       "yes",
	})

	require.Len(t, kept, 1)
	assert.Equal(t, "orthostatic", kept[0].ID)
	assert.Equal(t, "yes", kept[0].Answer)
	assert.Equal(t, questions[0].Prompt, kept[0].Prompt)
}

func TestSanitizeAnswersDropsInvalidOption(t *testing.T) {
	questions := []model.Question{
		{ID: "brain_fog", Prompt: "Any brain fog?", Options: []string{"no", "mild", "moderate", "severe"}},
	}

	kept := sanitizeAnswers(questions, map[string]string{"brain_fog": "extreme"})
	assert.Empty(t, kept)

	kept = sanitizeAnswers(questions, map[string]string{"brain_fog": " mild "})
	assert.Empty(t, kept)
}
