// Package policy stores per-subscriber sync policy.
//
// Every subscriber community has a verification flag, a switch map and a set
// of role bindings. The reconcile engine only reads them; administrators change
// them through the settings HTTP API, the /settings command or the CLI.
//
// # Switches
//
// The switch set is closed: whitelist, sync_roles, sync_nicknames, sync_bans and
// use_api. Each switch has a global default and may require community
// verification to take effect (see Switches.Effective).
//
// # Storage
//
// Values are kept in three GORM tables (verified_guilds, guild_switches,
// guild_role_bindings) on the configured MySQL or SQLite database.
//
// # Usage
//
//	store := policy.NewStore(db, cfg.Donor)
//	verified, err := store.IsCommunityVerified(ctx, guildID)
//	switches, err := store.Switches(ctx, guildID)
//	if switches.Effective(verified).Enabled(policy.SyncBans) { ... }
package policy
