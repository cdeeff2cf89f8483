package settings

import (
	"context"
	"errors"
	"fmt"

	"guild-sync/core/donor"
	"guild-sync/core/policy"
	"guild-sync/core/utils"

	"go.uber.org/zap"
)

var (
	// ErrInvalidInput is returned for malformed ids and values.
	ErrInvalidInput = errors.New("invalid input")
	// ErrSwitchLocked is returned when a verified-only switch is changed in an
	// unverified community.
	ErrSwitchLocked = errors.New("switch is only available to verified communities")
)

// Store is the policy store the settings service reads and writes.
type Store interface {
	IsCommunityVerified(ctx context.Context, guildID string) (bool, error)
	Switches(ctx context.Context, guildID string) (policy.Switches, error)
	RoleBindings(ctx context.Context, guildID string) (map[donor.RoleAlias]string, error)
	SetVerified(ctx context.Context, guildID string, verified bool) error
	SetSwitch(ctx context.Context, guildID string, sw policy.Switch, value bool) error
	BindRole(ctx context.Context, guildID string, alias donor.RoleAlias, roleID string) error
	UnbindRole(ctx context.Context, guildID string, alias donor.RoleAlias) error
}

// SwitchView is one switch as shown to administrators.
type SwitchView struct {
	policy.Setting
	// Enabled is the stored value, or the default when nothing is stored.
	Enabled bool `json:"enabled"`
	// Accessible is false for verified-only switches of unverified communities.
	Accessible bool `json:"accessible"`
}

// Effective reports whether the switch actually takes effect.
func (s SwitchView) Effective() bool {
	return s.Enabled && s.Accessible
}

// RoleView is one donor role alias and its local binding.
type RoleView struct {
	Alias        donor.RoleAlias `json:"alias"`
	Name         string          `json:"name"`
	VerifiedOnly bool            `json:"verified_only"`
	RoleID       string          `json:"role_id,omitempty"`
	Accessible   bool            `json:"accessible"`
}

// View is the full settings picture of a community.
type View struct {
	GuildID  string       `json:"guild_id"`
	Verified bool         `json:"verified"`
	Switches []SwitchView `json:"switches"`
	Roles    []RoleView   `json:"roles"`
}

// Enabled reports whether sw is effectively on.
func (v *View) Enabled(sw policy.Switch) bool {
	for _, s := range v.Switches {
		if s.Switch == sw {
			return s.Effective()
		}
	}
	return false
}

// LockedSwitches returns the names of switches that need verification.
func (v *View) LockedSwitches() []string {
	var names []string
	for _, s := range v.Switches {
		if !s.Accessible {
			names = append(names, s.Name)
		}
	}
	return names
}

// LockedRoles returns the names of bound roles that need verification.
func (v *View) LockedRoles() []string {
	var names []string
	for _, r := range v.Roles {
		if r.RoleID != "" && !r.Accessible {
			names = append(names, r.Name)
		}
	}
	return names
}

// Service reads and changes community sync settings.
type Service struct {
	store  Store
	donor  donor.Config
	logger *zap.Logger
}

// NewService creates a settings service.
func NewService(store Store, donorCfg donor.Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, donor: donorCfg, logger: logger}
}

// Show returns the settings of a community.
func (s *Service) Show(ctx context.Context, guildID string) (*View, error) {
	verified, err := s.store.IsCommunityVerified(ctx, guildID)
	if err != nil {
		return nil, err
	}
	switches, err := s.store.Switches(ctx, guildID)
	if err != nil {
		return nil, err
	}
	bindings, err := s.store.RoleBindings(ctx, guildID)
	if err != nil {
		return nil, err
	}

	view := &View{GuildID: guildID, Verified: verified}
	for _, setting := range policy.Settings {
		view.Switches = append(view.Switches, SwitchView{
			Setting:    setting,
			Enabled:    switches.Enabled(setting.Switch),
			Accessible: verified || !setting.VerifiedOnly,
		})
	}
	for _, role := range s.donor.Roles {
		view.Roles = append(view.Roles, RoleView{
			Alias:        role.Alias,
			Name:         role.Name,
			VerifiedOnly: role.VerifiedOnly,
			RoleID:       bindings[role.Alias],
			Accessible:   verified || !role.VerifiedOnly,
		})
	}
	return view, nil
}

// SetSwitch changes one switch. Verified-only switches cannot be changed in
// unverified communities.
func (s *Service) SetSwitch(ctx context.Context, guildID, rawSwitch string, value bool) (*View, error) {
	sw, err := policy.ParseSwitch(rawSwitch)
	if err != nil {
		return nil, err
	}

	setting, _ := policy.Lookup(sw)
	if setting.VerifiedOnly {
		verified, err := s.store.IsCommunityVerified(ctx, guildID)
		if err != nil {
			return nil, err
		}
		if !verified {
			return nil, fmt.Errorf("%s: %w", setting.Name, ErrSwitchLocked)
		}
	}

	if err := s.store.SetSwitch(ctx, guildID, sw, value); err != nil {
		return nil, err
	}
	s.logger.Info("Switch changed", zap.String("guild_id", guildID), zap.String("switch", string(sw)), zap.Bool("value", value))
	return s.Show(ctx, guildID)
}

// SetVerified marks or unmarks a community as verified.
func (s *Service) SetVerified(ctx context.Context, guildID string, verified bool) (*View, error) {
	if err := s.store.SetVerified(ctx, guildID, verified); err != nil {
		return nil, err
	}
	s.logger.Info("Verification changed", zap.String("guild_id", guildID), zap.Bool("verified", verified))
	return s.Show(ctx, guildID)
}

// BindRole binds a local role to a donor role alias.
func (s *Service) BindRole(ctx context.Context, guildID, rawAlias, rawRole string) (*View, error) {
	alias, err := s.donor.ParseAlias(rawAlias)
	if err != nil {
		return nil, err
	}
	roleID, err := utils.ParseSnowflake(rawRole)
	if err != nil {
		return nil, fmt.Errorf("%w: role: %w", ErrInvalidInput, err)
	}

	if err := s.store.BindRole(ctx, guildID, alias, roleID); err != nil {
		return nil, err
	}
	s.logger.Info("Role bound", zap.String("guild_id", guildID), zap.String("alias", string(alias)), zap.String("role_id", roleID))
	return s.Show(ctx, guildID)
}

// UnbindRole removes a role binding.
func (s *Service) UnbindRole(ctx context.Context, guildID, rawAlias string) (*View, error) {
	alias, err := s.donor.ParseAlias(rawAlias)
	if err != nil {
		return nil, err
	}
	if err := s.store.UnbindRole(ctx, guildID, alias); err != nil {
		return nil, err
	}
	s.logger.Info("Role unbound", zap.String("guild_id", guildID), zap.String("alias", string(alias)))
	return s.Show(ctx, guildID)
}

// IsClientError reports whether err was caused by the caller's input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrSwitchLocked) ||
		errors.Is(err, policy.ErrUnknownSwitch) ||
		errors.Is(err, donor.ErrUnknownAlias)
}
