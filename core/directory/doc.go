// Package directory exposes community membership and moderation actions.
//
// The Provider interface is what the reconcile engine talks to: member
// lookups that treat absence as a normal answer, a streamed ban list, and the
// mutating actions (kick, ban, unban, role grants, role revocations and
// display name changes). Every mutation carries an audit reason.
//
// # Implementations
//
//   - Discord: backed by a discordgo session. Platform errors are classified
//     into ErrPermissionDenied and ErrNotFound; a request that hits its
//     deadline is reported as ErrPermissionDenied.
//   - Memory: an in-process directory used by tests and dry runs.
//
// # Usage
//
//	provider := directory.NewDiscord(session)
//	member, err := provider.Member(ctx, guildID, userID)
//	if member == nil && err == nil {
//	    // not a member
//	}
package directory
