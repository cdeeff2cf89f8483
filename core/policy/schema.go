package policy

import (
	"guild-sync/core/database"

	"gorm.io/gorm"
)

var expectedSchema = map[string][]string{
	VerifiedGuild{}.TableName():    {"guild_id", "verified_at"},
	GuildSwitch{}.TableName():      {"guild_id", "alias", "value", "updated_at"},
	GuildRoleBinding{}.TableName(): {"guild_id", "alias", "role_id", "updated_at"},
}

// CheckSchema returns "table.column" entries that are missing from the live
// database. An empty result means no migration is pending.
func CheckSchema(db *gorm.DB) ([]string, error) {
	var missing []string
	for _, table := range []string{
		VerifiedGuild{}.TableName(),
		GuildSwitch{}.TableName(),
		GuildRoleBinding{}.TableName(),
	} {
		cols, err := database.MissingColumns(db, table, expectedSchema[table])
		if err != nil {
			return nil, err
		}
		for _, col := range cols {
			missing = append(missing, table+"."+col)
		}
	}
	return missing, nil
}
