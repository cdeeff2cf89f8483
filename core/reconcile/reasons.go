package reconcile

import (
	"fmt"

	"guild-sync/core/policy"
)

var switchPhrases = map[policy.Switch]string{
	policy.Whitelist:     "Whitelist is enabled",
	policy.SyncRoles:     "Roles sync is enabled",
	policy.SyncNicknames: "Nicknames sync is enabled",
	policy.SyncBans:      "Bans sync (privileged) is enabled",
	policy.UseAPI:        "Nicknames sync and API are enabled",
}

// reason builds the audit reason of a mutation caused by sw.
func (e *Engine) reason(sw policy.Switch) string {
	return fmt.Sprintf("%s, use %s to disable", switchPhrases[sw], e.cfg.SettingsCommand)
}

// banReason quotes the donor ban reason.
func (e *Engine) banReason(donorReason string) string {
	if donorReason == "" {
		donorReason = "not specified"
	}
	return fmt.Sprintf("%s [donor ban reason: %s]", e.reason(policy.SyncBans), donorReason)
}
