// Package reconcile keeps subscriber community members consistent with the
// donor community.
//
// # Architecture
//
// 1. Engine: owns the donor configuration, the policy reader, the directory
//    provider and the identity client. SyncUser reconciles one user; Sweep
//    reconciles every member of a community.
//
// 2. State machine: a user sync starts in one of four states and every state
//    has one transition function:
//
//	AbsentFromSubscriber   ban check (verified communities only)
//	PresentUnverified      roles, nickname
//	PresentVerifiedNoApi   whitelist, ban check, roles, nickname, ban check
//	PresentVerifiedApi     as above, then the identity service nickname
//
//    A member kicked by the whitelist continues as AbsentFromSubscriber.
//
// 3. Role mapper: DiffRoles turns the donor member's roles and the community
//    role bindings into two disjoint sets of role ids to grant and revoke.
//
// 4. Result: every attempted action adds an Outcome. Failures never abort a
//    sync and never leave the engine as errors; they become messages.
//
// # Usage Example
//
//	engine := reconcile.NewEngine(cfg.Sync, cfg.Donor, store, provider, identityClient, logger)
//
//	result := engine.SyncUser(ctx, guildID, directory.User{ID: userID})
//	if !result.Success {
//	    for _, msg := range result.Errors {
//	        fmt.Println(msg)
//	    }
//	}
//
//	report := engine.Sweep(ctx, guildID, func(p reconcile.Progress) {
//	    fmt.Printf("%d/%d\n", p.Done, p.Total)
//	})
package reconcile
