// Package commands serves the bot's application commands.
//
//	Sync            user command: sync one member (Manage Roles + Manage Nicknames)
//	/everyone-sync  sweep the whole server, editing the reply as members finish
//	/settings       show settings; with switch and value, change one (Manage Server)
//
// Every reply is ephemeral. Rendering lives in pure functions (SyncEmbed,
// ProgressEmbed, SweepEmbed, SettingsEmbeds) so it is tested without a
// gateway connection.
package commands
