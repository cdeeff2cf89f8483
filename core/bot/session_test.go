package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	_, err := New(Config{}, zap.NewNop())
	assert.ErrorIs(t, err, ErrMissingToken)

	s, err := New(Config{Token: "abc"}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "Bot abc", s.Discord().Token)
	assert.Equal(t, Intents, s.Discord().Identify.Intents)
}

func TestRegisterCommands_Disabled(t *testing.T) {
	s, err := New(Config{Token: "abc", RegisterCommands: false}, zap.NewNop())
	require.NoError(t, err)

	assert.NoError(t, s.RegisterCommands(nil))
}

func TestRegisterCommands_NotOpen(t *testing.T) {
	s, err := New(Config{Token: "abc", RegisterCommands: true}, zap.NewNop())
	require.NoError(t, err)

	assert.Error(t, s.RegisterCommands(nil))
}
