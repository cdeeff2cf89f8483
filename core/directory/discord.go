package directory

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"
)

// pageSize is the maximum page size of the member and ban list endpoints.
const pageSize = 1000

// restClient is the part of *discordgo.Session the provider uses.
type restClient interface {
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
	GuildMembers(guildID, after string, limit int, options ...discordgo.RequestOption) ([]*discordgo.Member, error)
	GuildBans(guildID string, limit int, beforeID, afterID string, options ...discordgo.RequestOption) ([]*discordgo.GuildBan, error)
	GuildBan(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.GuildBan, error)
	GuildMemberDeleteWithReason(guildID, userID, reason string, options ...discordgo.RequestOption) error
	GuildBanCreateWithReason(guildID, userID, reason string, days int, options ...discordgo.RequestOption) error
	GuildBanDelete(guildID, userID string, options ...discordgo.RequestOption) error
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildMemberNickname(guildID, userID, nickname string, options ...discordgo.RequestOption) error
}

// Discord is a Provider backed by the Discord REST API.
type Discord struct {
	api restClient
}

// NewDiscord creates a provider over an open discordgo session.
func NewDiscord(session *discordgo.Session) *Discord {
	return &Discord{api: session}
}

func (d *Discord) Member(ctx context.Context, guildID, userID string) (*Member, error) {
	m, err := d.api.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		err = classify(err)
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get member %s of guild %s: %w", userID, guildID, err)
	}
	return toMember(guildID, m), nil
}

func (d *Discord) Members(ctx context.Context, guildID string) ([]*Member, error) {
	var (
		out   []*Member
		after string
	)
	for {
		page, err := d.api.GuildMembers(guildID, after, pageSize, discordgo.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to list members of guild %s: %w", guildID, classify(err))
		}
		for _, m := range page {
			out = append(out, toMember(guildID, m))
		}
		if len(page) < pageSize {
			return out, nil
		}
		after = page[len(page)-1].User.ID
	}
}

func (d *Discord) Bans(ctx context.Context, guildID string) <-chan BanRecord {
	ch := make(chan BanRecord)

	go func() {
		defer close(ch)

		after := ""
		for {
			page, err := d.api.GuildBans(guildID, pageSize, "", after, discordgo.WithContext(ctx))
			if err != nil {
				select {
				case ch <- BanRecord{GuildID: guildID, Err: fmt.Errorf("failed to list bans of guild %s: %w", guildID, classify(err))}:
				case <-ctx.Done():
				}
				return
			}

			for _, ban := range page {
				if ban.User == nil {
					continue
				}
				select {
				case ch <- BanRecord{GuildID: guildID, UserID: ban.User.ID, Reason: ban.Reason}:
				case <-ctx.Done():
					return
				}
			}

			if len(page) < pageSize || page[len(page)-1].User == nil {
				return
			}
			after = page[len(page)-1].User.ID
		}
	}()

	return ch
}

func (d *Discord) FindBan(ctx context.Context, guildID, userID string) (*BanRecord, error) {
	ban, err := d.api.GuildBan(guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		err = classify(err)
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get ban of %s in guild %s: %w", userID, guildID, err)
	}
	return &BanRecord{GuildID: guildID, UserID: userID, Reason: ban.Reason}, nil
}

func (d *Discord) Kick(ctx context.Context, guildID, userID, reason string) error {
	return classify(d.api.GuildMemberDeleteWithReason(guildID, userID, reason, discordgo.WithContext(ctx)))
}

func (d *Discord) Ban(ctx context.Context, guildID, userID, reason string) error {
	return classify(d.api.GuildBanCreateWithReason(guildID, userID, reason, 0, discordgo.WithContext(ctx)))
}

func (d *Discord) Unban(ctx context.Context, guildID, userID, reason string) error {
	return classify(d.api.GuildBanDelete(guildID, userID, discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason)))
}

// GrantRoles adds roles one by one. Every role is attempted; the joined error
// of all failed roles is returned.
func (d *Discord) GrantRoles(ctx context.Context, guildID, userID string, roleIDs []string, reason string) error {
	var errs []error
	for _, roleID := range roleIDs {
		err := d.api.GuildMemberRoleAdd(guildID, userID, roleID, discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
		if err != nil {
			errs = append(errs, fmt.Errorf("role %s: %w", roleID, classify(err)))
		}
	}
	return errors.Join(errs...)
}

func (d *Discord) RevokeRoles(ctx context.Context, guildID, userID string, roleIDs []string, reason string) error {
	var errs []error
	for _, roleID := range roleIDs {
		err := d.api.GuildMemberRoleRemove(guildID, userID, roleID, discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
		if err != nil {
			errs = append(errs, fmt.Errorf("role %s: %w", roleID, classify(err)))
		}
	}
	return errors.Join(errs...)
}

func (d *Discord) SetDisplayName(ctx context.Context, guildID, userID, name, reason string) error {
	return classify(d.api.GuildMemberNickname(guildID, userID, name, discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason)))
}

// classify maps platform errors onto ErrPermissionDenied and ErrNotFound while
// keeping the original error in the chain.
func classify(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: request timed out: %w", ErrPermissionDenied, err)
	}

	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return err
	}

	code := 0
	if restErr.Message != nil {
		code = restErr.Message.Code
	}
	status := 0
	if restErr.Response != nil {
		status = restErr.Response.StatusCode
	}

	switch {
	case code == discordgo.ErrCodeMissingPermissions || status == http.StatusForbidden:
		return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	case code == discordgo.ErrCodeUnknownMember,
		code == discordgo.ErrCodeUnknownBan,
		code == discordgo.ErrCodeUnknownUser,
		status == http.StatusNotFound:
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	default:
		return err
	}
}

func toMember(guildID string, m *discordgo.Member) *Member {
	out := &Member{
		GuildID: guildID,
		Roles:   append([]string(nil), m.Roles...),
	}
	if m.User != nil {
		out.User = User{ID: m.User.ID, Username: m.User.Username, Bot: m.User.Bot}
	}
	out.DisplayName = displayName(m)
	return out
}

// displayName resolves the name shown in a guild: nickname, then global name,
// then username.
func displayName(m *discordgo.Member) string {
	if m.Nick != "" {
		return m.Nick
	}
	if m.User == nil {
		return ""
	}
	if m.User.GlobalName != "" {
		return m.User.GlobalName
	}
	return m.User.Username
}
