package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"guild-sync/core/reconcile"
	"guild-sync/feature/settings"
	guildsync "guild-sync/feature/sync"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// progressInterval limits how often a running sweep edits its reply.
const progressInterval = 2 * time.Second

// responder is the subset of *discordgo.Session used to answer interactions.
type responder interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Handler routes application command interactions.
type Handler struct {
	ctx          context.Context
	api          responder
	guildName    func(guildID string) string
	sync         *guildsync.Service
	settings     *settings.Service
	settingsName string
	interval     time.Duration
	logger       *zap.Logger
}

// NewHandler creates a command handler. ctx bounds every sync started from a
// command and is usually cancelled on shutdown.
func NewHandler(ctx context.Context, session *discordgo.Session, syncSvc *guildsync.Service, settingsSvc *settings.Service, settingsCommand string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		ctx:          ctx,
		api:          session,
		guildName:    stateGuildName(session),
		sync:         syncSvc,
		settings:     settingsSvc,
		settingsName: SettingsName(settingsCommand),
		interval:     progressInterval,
		logger:       logger,
	}
}

// Commands returns the application commands this handler serves.
func (h *Handler) Commands() []*discordgo.ApplicationCommand {
	return Definitions(h.settingsName)
}

// HandleInteraction is the discordgo InteractionCreate handler.
func (h *Handler) HandleInteraction(_ *discordgo.Session, i *discordgo.InteractionCreate) {
	h.route(i.Interaction)
}

func (h *Handler) route(i *discordgo.Interaction) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	data := i.ApplicationCommandData()

	if i.GuildID == "" || i.Member == nil {
		h.respondError(i, "this command only works in a server")
		return
	}

	var err error
	switch data.Name {
	case SyncCommand:
		err = h.handleSync(i, data)
	case SweepCommand:
		err = h.handleSweep(i)
	case h.settingsName:
		err = h.handleSettings(i, data)
	default:
		err = fmt.Errorf("unknown command: %s", data.Name)
	}

	if err != nil {
		h.logger.Error("Command error", zap.String("command", data.Name), zap.String("guild_id", i.GuildID), zap.Error(err))
	}
}

func (h *Handler) handleSync(i *discordgo.Interaction, data discordgo.ApplicationCommandInteractionData) error {
	if i.Member.Permissions&syncPermissions != syncPermissions {
		h.respondError(i, "you need the Manage Roles and Manage Nicknames permissions")
		return nil
	}
	if err := h.deferReply(i); err != nil {
		return err
	}

	label := data.TargetID
	if data.Resolved != nil {
		if u, ok := data.Resolved.Users[data.TargetID]; ok {
			label = u.Username
		}
	}

	result := h.sync.SyncMember(h.ctx, i.GuildID, data.TargetID)
	return h.edit(i, SyncEmbed(label, h.guildName(i.GuildID), result))
}

func (h *Handler) handleSweep(i *discordgo.Interaction) error {
	if i.Member.Permissions&syncPermissions != syncPermissions {
		h.respondError(i, "you need the Manage Roles and Manage Nicknames permissions")
		return nil
	}
	if err := h.deferReply(i); err != nil {
		return err
	}
	guild := h.guildName(i.GuildID)

	var (
		errs     []string
		lastEdit time.Time
	)
	run := h.sync.Sweep(h.ctx, i.GuildID, func(p reconcile.Progress) {
		errs = append(errs, p.Member.Errors...)
		if p.Done < p.Total && time.Since(lastEdit) < h.interval {
			return
		}
		lastEdit = time.Now()
		if err := h.edit(i, ProgressEmbed(guild, p, errs)); err != nil {
			h.logger.Debug("Failed to edit sweep progress", zap.Error(err))
		}
	})

	return h.edit(i, SweepEmbed(guild, run.Report))
}

func (h *Handler) handleSettings(i *discordgo.Interaction, data discordgo.ApplicationCommandInteractionData) error {
	admin := i.Member.Permissions&adminPermissions != 0

	var (
		rawSwitch string
		value     *bool
	)
	for _, opt := range data.Options {
		switch opt.Name {
		case optionSwitch:
			rawSwitch = opt.StringValue()
		case optionValue:
			v := opt.BoolValue()
			value = &v
		}
	}

	if (rawSwitch == "") != (value == nil) {
		h.respondError(i, "switch and value must be given together")
		return nil
	}
	if rawSwitch != "" && !admin {
		h.respondError(i, "you need the Manage Server permission to change settings")
		return nil
	}

	if err := h.deferReply(i); err != nil {
		return err
	}

	var (
		view *settings.View
		err  error
	)
	if rawSwitch == "" {
		view, err = h.settings.Show(h.ctx, i.GuildID)
	} else {
		view, err = h.settings.SetSwitch(h.ctx, i.GuildID, rawSwitch, *value)
	}

	if err != nil {
		message := "could not read sync settings"
		if settings.IsClientError(err) {
			message = err.Error()
		}
		return errors.Join(err, h.editText(i, "❌ "+message))
	}

	embeds := SettingsEmbeds(h.guildName(i.GuildID), view, admin)
	_, err = h.api.InteractionResponseEdit(i, &discordgo.WebhookEdit{Embeds: &embeds})
	return err
}

func (h *Handler) deferReply(i *discordgo.Interaction) error {
	return h.api.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
}

func (h *Handler) edit(i *discordgo.Interaction, embed *discordgo.MessageEmbed) error {
	_, err := h.api.InteractionResponseEdit(i, &discordgo.WebhookEdit{
		Embeds: &[]*discordgo.MessageEmbed{embed},
	})
	return err
}

func (h *Handler) editText(i *discordgo.Interaction, content string) error {
	_, err := h.api.InteractionResponseEdit(i, &discordgo.WebhookEdit{Content: &content})
	return err
}

func (h *Handler) respondError(i *discordgo.Interaction, message string) {
	err := h.api.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: "❌ " + message,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		h.logger.Debug("Failed to respond", zap.Error(err))
	}
}

func stateGuildName(session *discordgo.Session) func(string) string {
	return func(guildID string) string {
		if session != nil && session.State != nil {
			if g, err := session.State.Guild(guildID); err == nil && g.Name != "" {
				return g.Name
			}
		}
		return guildID
	}
}
