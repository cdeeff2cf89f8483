package bot

// Config holds configuration for the Discord bot.
type Config struct {
	// Token is the bot token.
	Token string `mapstructure:"token" default:""`
	// RegisterCommands overwrites the application commands on startup.
	RegisterCommands bool `mapstructure:"register_commands" default:"true"`
	// CommandGuildID registers commands in one guild instead of globally.
	CommandGuildID string `mapstructure:"command_guild_id" default:""`
}
