package directory

import (
	"context"
	"errors"
)

var (
	// ErrPermissionDenied is returned when the platform rejects a mutation.
	// Timeouts of mutating calls are reported in the same class.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrNotFound is returned when a member, ban or guild does not exist.
	ErrNotFound = errors.New("not found")
)

// User identifies an account independently of any community.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Bot      bool   `json:"bot"`
}

// Member is a user within one community.
type Member struct {
	GuildID     string   `json:"guild_id"`
	User        User     `json:"user"`
	DisplayName string   `json:"display_name"`
	Roles       []string `json:"roles"`
}

// HasRole reports whether the member holds roleID.
func (m *Member) HasRole(roleID string) bool {
	for _, id := range m.Roles {
		if id == roleID {
			return true
		}
	}
	return false
}

// String renders the member for error messages and logs.
func (m *Member) String() string {
	if m.User.Username != "" {
		return m.User.Username
	}
	return m.User.ID
}

// BanRecord is one ban of a community. Err is set on the last record of a
// stream that failed.
type BanRecord struct {
	GuildID string `json:"guild_id"`
	UserID  string `json:"user_id"`
	Reason  string `json:"reason"`
	Err     error  `json:"-"`
}

// Provider exposes community membership and the mutating actions the
// reconcile engine applies. Every mutation takes an audit reason.
type Provider interface {
	// Member looks up a member. It returns (nil, nil) when the user is not a
	// member of the guild.
	Member(ctx context.Context, guildID, userID string) (*Member, error)

	// Members lists every member of a guild.
	Members(ctx context.Context, guildID string) ([]*Member, error)

	// Bans streams the ban list of a guild. The channel is closed when the
	// list is exhausted, the context is cancelled, or after a record with Err.
	Bans(ctx context.Context, guildID string) <-chan BanRecord

	// FindBan returns the ban of one user, or (nil, nil) when not banned.
	FindBan(ctx context.Context, guildID, userID string) (*BanRecord, error)

	Kick(ctx context.Context, guildID, userID, reason string) error
	Ban(ctx context.Context, guildID, userID, reason string) error
	Unban(ctx context.Context, guildID, userID, reason string) error
	GrantRoles(ctx context.Context, guildID, userID string, roleIDs []string, reason string) error
	RevokeRoles(ctx context.Context, guildID, userID string, roleIDs []string, reason string) error
	SetDisplayName(ctx context.Context, guildID, userID, name, reason string) error
}
