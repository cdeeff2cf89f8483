package policy

import (
	"context"
	"regexp"
	"testing"

	"guild-sync/core/database"
	"guild-sync/core/donor"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

var testDonor = donor.Config{
	GuildID:    "100",
	PlayerRole: "player",
	Roles: []donor.Role{
		{Alias: "player", Name: "Player", RoleID: "1"},
		{Alias: "helper", Name: "Helper", RoleID: "2", VerifiedOnly: true},
	},
}

func setupStore(t *testing.T) (*Store, *gorm.DB) {
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return NewStore(db, testDonor), db
}

// setupMockDB creates a mock GORM DB on the mysql dialect for query-shape tests.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func TestStore_Verification(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	verified, err := store.IsCommunityVerified(ctx, "200")
	require.NoError(t, err)
	assert.False(t, verified)

	require.NoError(t, store.SetVerified(ctx, "200", true))
	// Verifying twice is a no-op
	require.NoError(t, store.SetVerified(ctx, "200", true))

	verified, err = store.IsCommunityVerified(ctx, "200")
	require.NoError(t, err)
	assert.True(t, verified)

	require.NoError(t, store.SetVerified(ctx, "200", false))
	verified, err = store.IsCommunityVerified(ctx, "200")
	require.NoError(t, err)
	assert.False(t, verified)
}

func TestStore_Switches(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	switches, err := store.Switches(ctx, "200")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), switches)

	require.NoError(t, store.SetSwitch(ctx, "200", SyncBans, true))
	require.NoError(t, store.SetSwitch(ctx, "200", SyncRoles, false))
	// Upsert keeps one row per switch
	require.NoError(t, store.SetSwitch(ctx, "200", SyncBans, true))

	switches, err = store.Switches(ctx, "200")
	require.NoError(t, err)
	assert.True(t, switches.Enabled(SyncBans))
	assert.False(t, switches.Enabled(SyncRoles))
	assert.True(t, switches.Enabled(SyncNicknames))

	// Other guilds are unaffected
	other, err := store.Switches(ctx, "300")
	require.NoError(t, err)
	assert.False(t, other.Enabled(SyncBans))

	err = store.SetSwitch(ctx, "200", Switch("teleport"), true)
	assert.ErrorIs(t, err, ErrUnknownSwitch)
}

func TestStore_RoleBindings(t *testing.T) {
	store, db := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.BindRole(ctx, "200", "player", "900"))
	require.NoError(t, store.BindRole(ctx, "200", "helper", "901"))
	require.NoError(t, store.BindRole(ctx, "200", "helper", "902"))

	bindings, err := store.RoleBindings(ctx, "200")
	require.NoError(t, err)
	assert.Equal(t, map[donor.RoleAlias]string{"player": "900", "helper": "902"}, bindings)

	err = store.BindRole(ctx, "200", "admin", "903")
	assert.ErrorIs(t, err, donor.ErrUnknownAlias)

	err = store.BindRole(ctx, "200", "player", "")
	assert.Error(t, err)

	// Rows for aliases removed from the donor table are ignored
	require.NoError(t, db.Create(&GuildRoleBinding{GuildID: "200", Alias: "retired", RoleID: "904"}).Error)
	bindings, err = store.RoleBindings(ctx, "200")
	require.NoError(t, err)
	assert.NotContains(t, bindings, donor.RoleAlias("retired"))

	require.NoError(t, store.UnbindRole(ctx, "200", "helper"))
	require.NoError(t, store.UnbindRole(ctx, "200", "helper"))
	bindings, err = store.RoleBindings(ctx, "200")
	require.NoError(t, err)
	assert.Equal(t, map[donor.RoleAlias]string{"player": "900"}, bindings)
}

func TestStore_MySQLQueries(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewStore(db, testDonor)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `verified_guilds` WHERE guild_id = ?")).
		WithArgs("200").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(1))

	verified, err := store.IsCommunityVerified(context.Background(), "200")
	require.NoError(t, err)
	assert.True(t, verified)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `guild_switches` WHERE guild_id = ?")).
		WithArgs("200").
		WillReturnError(assert.AnError)

	_, err = store.Switches(context.Background(), "200")
	assert.ErrorIs(t, err, assert.AnError)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckSchema(t *testing.T) {
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)

	missing, err := CheckSchema(db)
	require.NoError(t, err)
	assert.Contains(t, missing, "guild_switches.alias")

	require.NoError(t, Migrate(db))
	missing, err = CheckSchema(db)
	require.NoError(t, err)
	assert.Empty(t, missing)
}
