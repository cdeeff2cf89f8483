// Package donor describes the authoritative donor community.
//
// The donor community is the single source of truth for member roles, display
// names and bans. Its identity and role alias table are loaded once from
// configuration and injected into the reconcile engine; nothing in this package
// talks to the chat platform.
//
// # Role Aliases
//
// A role alias is a stable name for a donor-side role (e.g. "player",
// "helper"). Subscriber administrators bind their own local roles to aliases,
// never to raw donor role ids. Aliases marked VerifiedOnly are only honoured in
// verified subscriber communities.
//
// # Usage
//
//	cfg := donor.Config{
//	    GuildID:    "828683007635488809",
//	    PlayerRole: "player",
//	    Roles: []donor.Role{
//	        {Alias: "player", Name: "Player", RoleID: "841098135376101377"},
//	    },
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package donor
