package policy

import (
	"context"
	"fmt"
	"time"

	"guild-sync/core/donor"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store persists subscriber policy: verification, switches and role bindings.
type Store struct {
	db    *gorm.DB
	donor donor.Config
}

// NewStore creates a policy store. The donor configuration validates role
// aliases on the write path.
func NewStore(db *gorm.DB, donorCfg donor.Config) *Store {
	return &Store{db: db, donor: donorCfg}
}

// Migrate creates or updates the policy tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&VerifiedGuild{}, &GuildSwitch{}, &GuildRoleBinding{})
}

// IsCommunityVerified reports whether the guild is verified.
func (s *Store) IsCommunityVerified(ctx context.Context, guildID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&VerifiedGuild{}).
		Where("guild_id = ?", guildID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to read verification of guild %s: %w", guildID, err)
	}
	return count > 0, nil
}

// Switches returns the guild switch map with defaults filled in.
func (s *Store) Switches(ctx context.Context, guildID string) (Switches, error) {
	var rows []GuildSwitch
	err := s.db.WithContext(ctx).
		Where("guild_id = ?", guildID).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read switches of guild %s: %w", guildID, err)
	}

	out := Defaults()
	for _, row := range rows {
		// Rows are written through SetSwitch only; anything else is stale.
		if _, ok := Lookup(Switch(row.Alias)); !ok {
			continue
		}
		out[Switch(row.Alias)] = row.Value
	}
	return out, nil
}

// RoleBindings returns local role ids keyed by donor role alias.
func (s *Store) RoleBindings(ctx context.Context, guildID string) (map[donor.RoleAlias]string, error) {
	var rows []GuildRoleBinding
	err := s.db.WithContext(ctx).
		Where("guild_id = ?", guildID).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read role bindings of guild %s: %w", guildID, err)
	}

	out := make(map[donor.RoleAlias]string, len(rows))
	for _, row := range rows {
		alias := donor.RoleAlias(row.Alias)
		if _, ok := s.donor.Role(alias); !ok {
			continue
		}
		out[alias] = row.RoleID
	}
	return out, nil
}

// SetVerified marks or unmarks a guild as verified.
func (s *Store) SetVerified(ctx context.Context, guildID string, verified bool) error {
	db := s.db.WithContext(ctx)

	if !verified {
		if err := db.Where("guild_id = ?", guildID).Delete(&VerifiedGuild{}).Error; err != nil {
			return fmt.Errorf("failed to unverify guild %s: %w", guildID, err)
		}
		return nil
	}

	row := VerifiedGuild{GuildID: guildID, VerifiedAt: time.Now().UTC()}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to verify guild %s: %w", guildID, err)
	}
	return nil
}

// SetSwitch stores a switch value.
func (s *Store) SetSwitch(ctx context.Context, guildID string, sw Switch, value bool) error {
	if _, ok := Lookup(sw); !ok {
		return fmt.Errorf("%q: %w", sw, ErrUnknownSwitch)
	}

	row := GuildSwitch{
		GuildID:   guildID,
		Alias:     string(sw),
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "guild_id"}, {Name: "alias"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to store switch %s of guild %s: %w", sw, guildID, err)
	}
	return nil
}

// BindRole binds a local role to a donor role alias.
func (s *Store) BindRole(ctx context.Context, guildID string, alias donor.RoleAlias, roleID string) error {
	if _, ok := s.donor.Role(alias); !ok {
		return fmt.Errorf("%q: %w", alias, donor.ErrUnknownAlias)
	}
	if roleID == "" {
		return fmt.Errorf("role id for alias %q is empty", alias)
	}

	row := GuildRoleBinding{
		GuildID:   guildID,
		Alias:     string(alias),
		RoleID:    roleID,
		UpdatedAt: time.Now().UTC(),
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "guild_id"}, {Name: "alias"}},
			DoUpdates: clause.AssignmentColumns([]string{"role_id", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to bind %s in guild %s: %w", alias, guildID, err)
	}
	return nil
}

// UnbindRole removes a role binding. Removing a missing binding is not an error.
func (s *Store) UnbindRole(ctx context.Context, guildID string, alias donor.RoleAlias) error {
	err := s.db.WithContext(ctx).
		Where("guild_id = ? AND alias = ?", guildID, string(alias)).
		Delete(&GuildRoleBinding{}).Error
	if err != nil {
		return fmt.Errorf("failed to unbind %s in guild %s: %w", alias, guildID, err)
	}
	return nil
}
