package policy

import "time"

// VerifiedGuild marks a subscriber community as verified.
type VerifiedGuild struct {
	GuildID    string `gorm:"primaryKey;size:32"`
	VerifiedAt time.Time
}

// TableName pins the table name across drivers.
func (VerifiedGuild) TableName() string { return "verified_guilds" }

// GuildSwitch stores one switch value of a subscriber community.
type GuildSwitch struct {
	GuildID   string `gorm:"primaryKey;size:32"`
	Alias     string `gorm:"primaryKey;size:32"`
	Value     bool
	UpdatedAt time.Time
}

func (GuildSwitch) TableName() string { return "guild_switches" }

// GuildRoleBinding binds a donor role alias to a local role.
type GuildRoleBinding struct {
	GuildID   string `gorm:"primaryKey;size:32"`
	Alias     string `gorm:"primaryKey;size:32"`
	RoleID    string `gorm:"size:32;not null"`
	UpdatedAt time.Time
}

func (GuildRoleBinding) TableName() string { return "guild_role_bindings" }
