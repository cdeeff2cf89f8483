package settings

import (
	"context"
	"testing"

	"guild-sync/core/database"
	"guild-sync/core/donor"
	"guild-sync/core/policy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testDonor = donor.Config{
	GuildID:    "100",
	PlayerRole: "player",
	Roles: []donor.Role{
		{Alias: "player", Name: "Player", RoleID: "1"},
		{Alias: "helper", Name: "Helper", RoleID: "2", VerifiedOnly: true},
	},
}

func setupService(t *testing.T) *Service {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, policy.Migrate(db))
	return NewService(policy.NewStore(db, testDonor), testDonor, zap.NewNop())
}

func TestService_ShowDefaults(t *testing.T) {
	svc := setupService(t)

	view, err := svc.Show(context.Background(), "123")
	require.NoError(t, err)

	assert.False(t, view.Verified)
	require.Len(t, view.Switches, len(policy.Settings))
	assert.True(t, view.Enabled(policy.SyncNicknames))
	assert.True(t, view.Enabled(policy.SyncRoles))
	assert.False(t, view.Enabled(policy.SyncBans))
	assert.ElementsMatch(t, []string{"Bans", "Whitelist", "API"}, view.LockedSwitches())

	require.Len(t, view.Roles, 2)
	assert.True(t, view.Roles[0].Accessible)
	assert.False(t, view.Roles[1].Accessible)
	assert.Empty(t, view.LockedRoles())
}

func TestService_SetSwitch(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	view, err := svc.SetSwitch(ctx, "123", "sync_roles", false)
	require.NoError(t, err)
	assert.False(t, view.Enabled(policy.SyncRoles))

	_, err = svc.SetSwitch(ctx, "123", "sync_bans", true)
	assert.ErrorIs(t, err, ErrSwitchLocked)
	assert.True(t, IsClientError(err))

	_, err = svc.SetSwitch(ctx, "123", "teleport", true)
	assert.ErrorIs(t, err, policy.ErrUnknownSwitch)

	_, err = svc.SetVerified(ctx, "123", true)
	require.NoError(t, err)

	view, err = svc.SetSwitch(ctx, "123", "sync_bans", true)
	require.NoError(t, err)
	assert.True(t, view.Verified)
	assert.True(t, view.Enabled(policy.SyncBans))
	assert.Empty(t, view.LockedSwitches())
}

func TestService_RoleBindings(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	view, err := svc.BindRole(ctx, "123", "helper", "<@&555>")
	require.NoError(t, err)
	assert.Equal(t, "555", view.Roles[1].RoleID)
	assert.Equal(t, []string{"Helper"}, view.LockedRoles())

	_, err = svc.BindRole(ctx, "123", "mayor", "555")
	assert.ErrorIs(t, err, donor.ErrUnknownAlias)

	_, err = svc.BindRole(ctx, "123", "player", "not-a-role")
	assert.ErrorIs(t, err, ErrInvalidInput)

	view, err = svc.UnbindRole(ctx, "123", "helper")
	require.NoError(t, err)
	assert.Empty(t, view.Roles[1].RoleID)
}
