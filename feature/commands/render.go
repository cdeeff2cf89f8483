package commands

import (
	"fmt"
	"strings"

	"guild-sync/core/policy"
	"guild-sync/core/reconcile"
	"guild-sync/core/utils"
	"guild-sync/feature/settings"

	"github.com/bwmarrin/discordgo"
)

const (
	colorSuccess = 0x1f8b4c
	colorFailure = 0x992d22

	// fieldLimit keeps error lists under the embed field value limit.
	fieldLimit  = 1020
	progressBar = 10
)

// ErrorList renders sync errors as a bulleted field value.
func ErrorList(errs []string) string {
	if len(errs) == 0 {
		return ""
	}
	return utils.Truncate("❌"+strings.Join(errs, "\n❌"), fieldLimit)
}

// SyncEmbed renders the result of a single member sync.
func SyncEmbed(user, guild string, result *reconcile.Result) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Sync result - %s | %s", user, guild),
		Color: colorSuccess,
	}
	if result.Success {
		embed.Fields = []*discordgo.MessageEmbedField{{Name: "Status", Value: "✅ Sync completed"}}
		return embed
	}
	embed.Color = colorFailure
	embed.Fields = []*discordgo.MessageEmbedField{{
		Name:  "Sync finished with errors, check the bot settings:",
		Value: ErrorList(result.Errors),
	}}
	return embed
}

// ProgressEmbed renders a running sweep after p.Member was processed.
func ProgressEmbed(guild string, p reconcile.Progress, errs []string) *discordgo.MessageEmbed {
	status := "synced"
	switch p.Member.Status {
	case reconcile.MemberFailed:
		status = "sync finished with errors"
	case reconcile.MemberSkipped:
		status = "bots are not synced"
	}

	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Syncing all members | %s", guild),
		Color: colorSuccess,
		Fields: []*discordgo.MessageEmbedField{{
			Name:  fmt.Sprintf("Users: %d/%d", p.Done, p.Total),
			Value: fmt.Sprintf("%s - %s", memberLabel(p.Member), status),
		}},
	}
	if len(errs) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Errors during sync:", Value: ErrorList(errs)})
	}
	return embed
}

// SweepEmbed renders a finished sweep.
func SweepEmbed(guild string, report *reconcile.SweepReport) *discordgo.MessageEmbed {
	done := len(report.Members)
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Syncing all members | %s", guild),
		Color: colorSuccess,
		Fields: []*discordgo.MessageEmbedField{{
			Name:  fmt.Sprintf("Synced members: %d/%d", done, report.Total),
			Value: utils.ProgressBar(done, report.Total, progressBar),
		}},
	}
	if len(report.Errors) > 0 {
		embed.Color = colorFailure
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Errors during sync:", Value: ErrorList(report.Errors)})
	}
	return embed
}

// SettingsEmbeds renders the settings of a community. Locked notices are only
// shown to administrators.
func SettingsEmbeds(guild string, view *settings.View, admin bool) []*discordgo.MessageEmbed {
	title := fmt.Sprintf("Sync settings | %s", guild)
	if view.Verified {
		title = fmt.Sprintf("Sync settings | ✅ %s", guild)
	}

	switches := &discordgo.MessageEmbed{Title: title, Color: colorSuccess}
	for _, s := range view.Switches {
		if !s.Accessible {
			continue
		}
		mark := "🔴"
		if s.Enabled {
			mark = "🟢"
		}
		switches.Fields = append(switches.Fields, &discordgo.MessageEmbedField{Name: mark + " " + s.Name, Value: s.Description})
	}
	if locked := view.LockedSwitches(); admin && len(locked) > 0 {
		switches.Fields = append(switches.Fields, lockedField("Settings", locked))
	}

	roles := &discordgo.MessageEmbed{Color: colorSuccess}
	if view.Enabled(policy.SyncRoles) {
		for _, r := range view.Roles {
			if r.RoleID == "" || !r.Accessible {
				continue
			}
			roles.Fields = append(roles.Fields, &discordgo.MessageEmbedField{Name: r.Name, Value: "<@&" + r.RoleID + ">", Inline: true})
		}
		if locked := view.LockedRoles(); admin && len(locked) > 0 {
			roles.Fields = append(roles.Fields, lockedField("Roles", locked))
		}
	} else {
		value := "Ask a server manager to enable it"
		if admin {
			if setting, ok := policy.Lookup(policy.SyncRoles); ok {
				value = fmt.Sprintf("Turn on `%s` to enable it", setting.Name)
			}
		}
		roles.Fields = append(roles.Fields, &discordgo.MessageEmbedField{Name: "☠ Role sync is disabled", Value: value})
	}

	return []*discordgo.MessageEmbed{switches, roles}
}

func lockedField(kind string, names []string) *discordgo.MessageEmbedField {
	bold := make([]string, len(names))
	for i, n := range names {
		bold[i] = "**" + n + "**"
	}
	return &discordgo.MessageEmbedField{
		Name:  "🔒 Server is not verified",
		Value: fmt.Sprintf("%s %s are only synced in verified servers", kind, strings.Join(bold, ", ")),
	}
}

func memberLabel(m reconcile.MemberOutcome) string {
	if m.Username != "" {
		return m.Username
	}
	return m.UserID
}
