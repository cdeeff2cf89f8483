// Package database handles database connections and schema inspection.
//
// It provides a wrapper around GORM (Go Object Relational Mapping) to configure
// MySQL connections for production and SQLite connections for local runs and
// tests, based on the application's configuration.
//
// # Connect
//
// Connect picks the dialector from Config.Driver, applies connection pool
// limits and verifies the connection with a bounded ping.
//
// # Schema Inspection
//
// GetTableColumns and MissingColumns read the live schema so the policy store
// can report tables or columns that still need a migration.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	missing, err := database.MissingColumns(db, "guild_switches", []string{"guild_id", "alias", "value"})
package database
