package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSwitch(t *testing.T) {
	for _, s := range Settings {
		sw, err := ParseSwitch(string(s.Switch))
		assert.NoError(t, err)
		assert.Equal(t, s.Switch, sw)
	}

	_, err := ParseSwitch("sync_everything")
	assert.ErrorIs(t, err, ErrUnknownSwitch)
}

func TestSwitches_Effective(t *testing.T) {
	switches := Switches{
		Whitelist:     true,
		SyncBans:      true,
		UseAPI:        true,
		SyncRoles:     true,
		SyncNicknames: false,
	}

	unverified := switches.Effective(false)
	assert.False(t, unverified.Enabled(Whitelist))
	assert.False(t, unverified.Enabled(SyncBans))
	assert.False(t, unverified.Enabled(UseAPI))
	assert.True(t, unverified.Enabled(SyncRoles))
	assert.False(t, unverified.Enabled(SyncNicknames))

	verified := switches.Effective(true)
	assert.True(t, verified.Enabled(Whitelist))
	assert.True(t, verified.Enabled(SyncBans))
	assert.True(t, verified.Enabled(UseAPI))
}

func TestSwitches_EnabledFallsBackToDefault(t *testing.T) {
	empty := Switches{}
	for _, s := range Settings {
		assert.Equal(t, s.Default, empty.Enabled(s.Switch), s.Switch)
	}
}
