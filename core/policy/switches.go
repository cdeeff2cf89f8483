package policy

import (
	"errors"
	"fmt"
)

// Switch is a named per-community feature toggle.
type Switch string

const (
	// Whitelist removes members who are not players of the donor community.
	Whitelist Switch = "whitelist"
	// SyncRoles mirrors donor roles through the role alias bindings.
	SyncRoles Switch = "sync_roles"
	// SyncNicknames mirrors the donor display name.
	SyncNicknames Switch = "sync_nicknames"
	// SyncBans mirrors donor bans.
	SyncBans Switch = "sync_bans"
	// UseAPI pulls canonical profile data from the identity service.
	UseAPI Switch = "use_api"
)

// ErrUnknownSwitch is returned when a switch name is not part of the fixed set.
var ErrUnknownSwitch = errors.New("unknown switch")

// Setting describes one switch for settings views and default resolution.
type Setting struct {
	Switch       Switch `json:"alias"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Default      bool   `json:"default"`
	VerifiedOnly bool   `json:"verified_only"`
}

// Settings is the fixed, ordered switch table.
var Settings = []Setting{
	{
		Switch:      SyncNicknames,
		Name:        "Nicknames",
		Description: "Keep member nicknames equal to their donor display name",
		Default:     true,
	},
	{
		Switch:      SyncRoles,
		Name:        "Roles",
		Description: "Grant and revoke local roles bound to donor roles",
		Default:     true,
	},
	{
		Switch:       SyncBans,
		Name:         "Bans",
		Description:  "Ban members banned in the donor community",
		VerifiedOnly: true,
	},
	{
		Switch:       Whitelist,
		Name:         "Whitelist",
		Description:  "Only allow donor community players to stay",
		VerifiedOnly: true,
	},
	{
		Switch:       UseAPI,
		Name:         "API",
		Description:  "Use the identity service as the nickname source",
		VerifiedOnly: true,
	},
}

// Lookup returns the setting for a switch.
func Lookup(sw Switch) (Setting, bool) {
	for _, s := range Settings {
		if s.Switch == sw {
			return s, true
		}
	}
	return Setting{}, false
}

// ParseSwitch validates a switch name.
func ParseSwitch(raw string) (Switch, error) {
	sw := Switch(raw)
	if _, ok := Lookup(sw); !ok {
		return "", fmt.Errorf("%q: %w", raw, ErrUnknownSwitch)
	}
	return sw, nil
}

// Switches is the resolved switch map of one community.
type Switches map[Switch]bool

// Defaults returns a switch map populated with global defaults.
func Defaults() Switches {
	out := make(Switches, len(Settings))
	for _, s := range Settings {
		out[s.Switch] = s.Default
	}
	return out
}

// Enabled reports whether sw is on. Missing entries fall back to the default.
func (s Switches) Enabled(sw Switch) bool {
	if v, ok := s[sw]; ok {
		return v
	}
	setting, _ := Lookup(sw)
	return setting.Default
}

// Effective returns the switches that actually take effect: verified-only
// switches read as off in unverified communities.
func (s Switches) Effective(verified bool) Switches {
	out := make(Switches, len(Settings))
	for _, setting := range Settings {
		on := s.Enabled(setting.Switch)
		if setting.VerifiedOnly && !verified {
			on = false
		}
		out[setting.Switch] = on
	}
	return out
}
