package commands

import (
	"strings"

	"guild-sync/core/policy"

	"github.com/bwmarrin/discordgo"
)

// Command names.
const (
	SyncCommand      = "Sync"
	SweepCommand     = "everyone-sync"
	optionSwitch     = "switch"
	optionValue      = "value"
	defaultSettings  = "settings"
	syncPermissions  = int64(discordgo.PermissionManageRoles | discordgo.PermissionManageNicknames)
	adminPermissions = int64(discordgo.PermissionManageServer)
)

// SettingsName returns the slash command name behind a configured command
// such as "/settings".
func SettingsName(configured string) string {
	name := strings.TrimPrefix(strings.TrimSpace(configured), "/")
	if name == "" {
		return defaultSettings
	}
	return name
}

// Definitions returns every application command of the bot.
func Definitions(settingsName string) []*discordgo.ApplicationCommand {
	perms := syncPermissions
	noDM := false

	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(policy.Settings))
	for _, s := range policy.Settings {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: s.Name, Value: string(s.Switch)})
	}

	return []*discordgo.ApplicationCommand{
		{
			Name:                     SyncCommand,
			Type:                     discordgo.UserApplicationCommand,
			DefaultMemberPermissions: &perms,
			DMPermission:             &noDM,
		},
		{
			Name:                     SweepCommand,
			Description:              "Sync every member of this server with the donor server",
			Type:                     discordgo.ChatApplicationCommand,
			DefaultMemberPermissions: &perms,
			DMPermission:             &noDM,
		},
		{
			Name:         SettingsName(settingsName),
			Description:  "Show or change the sync settings of this server",
			Type:         discordgo.ChatApplicationCommand,
			DMPermission: &noDM,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        optionSwitch,
					Description: "Setting to change",
					Type:        discordgo.ApplicationCommandOptionString,
					Choices:     choices,
				},
				{
					Name:        optionValue,
					Description: "New value of the setting",
					Type:        discordgo.ApplicationCommandOptionBoolean,
				},
			},
		},
	}
}
