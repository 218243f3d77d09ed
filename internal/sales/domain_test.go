package sales

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	for token, want := range map[string]Status{
		"started":  StatusStarted,
		"progress": StatusProgress,
		"done":     StatusDone,
		"canceled": StatusCanceled,
		"CANCELED": StatusCanceled,
		"Progress": StatusProgress,
	} {
		got, err := ParseStatus(token)
		require.NoError(t, err, token)
		assert.Equal(t, want, got, token)
	}

	_, err := ParseStatus("finished")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = ParseStatus("")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusStarted.terminal())
	assert.False(t, StatusProgress.terminal())
	assert.True(t, StatusDone.terminal())
	assert.True(t, StatusCanceled.terminal())
}
