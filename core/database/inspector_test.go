package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTableColumns(t *testing.T) {
	db, err := Connect(Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)

	err = db.Exec("CREATE TABLE test_bindings (guild_id TEXT, alias TEXT, role_id TEXT)").Error
	require.NoError(t, err)

	columns, err := GetTableColumns(db, "test_bindings")
	assert.NoError(t, err)
	assert.Len(t, columns, 3)

	colMap := make(map[string]string)
	for _, col := range columns {
		colMap[col.Field] = col.Type
	}
	assert.Equal(t, "text", colMap["guild_id"])
	assert.Equal(t, "text", colMap["alias"])
	assert.Equal(t, "text", colMap["role_id"])

	// PRAGMA table_info returns an empty result for a missing table
	cols, err := GetTableColumns(db, "non_existent")
	assert.NoError(t, err)
	assert.Empty(t, cols)
}

func TestMissingColumns(t *testing.T) {
	db, err := Connect(Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.Exec("CREATE TABLE partial (guild_id TEXT, Alias TEXT)").Error)

	missing, err := MissingColumns(db, "partial", []string{"guild_id", "alias", "role_id"})
	assert.NoError(t, err)
	assert.Equal(t, []string{"role_id"}, missing)

	missing, err = MissingColumns(db, "absent", []string{"guild_id"})
	assert.NoError(t, err)
	assert.Equal(t, []string{"guild_id"}, missing)
}
