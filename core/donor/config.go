package donor

import (
	"errors"
	"fmt"
)

// RoleAlias is the stable identifier of a donor-side role.
type RoleAlias string

// Role describes one donor-side role that subscribers may bind to.
type Role struct {
	// Alias is the stable name subscribers bind local roles to.
	Alias RoleAlias `mapstructure:"alias" json:"alias"`
	// Name is the human label shown in settings views.
	Name string `mapstructure:"name" json:"name"`
	// RoleID is the donor community role id.
	RoleID string `mapstructure:"role_id" json:"role_id"`
	// VerifiedOnly restricts the binding to verified subscriber communities.
	VerifiedOnly bool `mapstructure:"verified_only" json:"verified_only"`
}

// Config holds the donor community identity and its role alias table.
type Config struct {
	// GuildID is the donor community id.
	GuildID string `mapstructure:"guild_id" default:""`
	// PlayerRole is the alias of the role required to pass the whitelist.
	PlayerRole RoleAlias `mapstructure:"player_role" default:"player"`
	// Roles is the donor role alias table. Loaded from config.yaml.
	Roles []Role `mapstructure:"roles"`
}

var (
	// ErrMissingGuild is returned when no donor community id is configured.
	ErrMissingGuild = errors.New("donor guild id is not configured")
	// ErrUnknownAlias is returned when an alias is not part of the role table.
	ErrUnknownAlias = errors.New("unknown donor role alias")
)

// Validate checks the alias table once at load time so lookups never fail at
// sync time.
func (c Config) Validate() error {
	if c.GuildID == "" {
		return ErrMissingGuild
	}

	seen := make(map[RoleAlias]struct{}, len(c.Roles))
	for i, role := range c.Roles {
		if role.Alias == "" {
			return fmt.Errorf("donor role #%d has an empty alias", i)
		}
		if role.RoleID == "" {
			return fmt.Errorf("donor role %q has an empty role id", role.Alias)
		}
		if _, dup := seen[role.Alias]; dup {
			return fmt.Errorf("donor role alias %q is declared twice", role.Alias)
		}
		seen[role.Alias] = struct{}{}
	}

	if _, ok := seen[c.PlayerRole]; !ok {
		return fmt.Errorf("player role %q: %w", c.PlayerRole, ErrUnknownAlias)
	}

	return nil
}

// Role returns the role declared under alias.
func (c Config) Role(alias RoleAlias) (Role, bool) {
	for _, role := range c.Roles {
		if role.Alias == alias {
			return role, true
		}
	}
	return Role{}, false
}

// PlayerRoleID returns the donor role id of the whitelist role.
func (c Config) PlayerRoleID() string {
	role, _ := c.Role(c.PlayerRole)
	return role.RoleID
}

// Aliases returns every declared alias in table order.
func (c Config) Aliases() []RoleAlias {
	aliases := make([]RoleAlias, 0, len(c.Roles))
	for _, role := range c.Roles {
		aliases = append(aliases, role.Alias)
	}
	return aliases
}

// ParseAlias validates a user-supplied alias against the role table.
func (c Config) ParseAlias(raw string) (RoleAlias, error) {
	alias := RoleAlias(raw)
	if _, ok := c.Role(alias); !ok {
		return "", fmt.Errorf("%q: %w", raw, ErrUnknownAlias)
	}
	return alias, nil
}
