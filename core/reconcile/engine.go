package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"guild-sync/core/directory"
	"guild-sync/core/donor"
	"guild-sync/core/identity"
	"guild-sync/core/policy"

	"go.uber.org/zap"
)

// Config holds sync engine configuration.
type Config struct {
	// MutationTimeoutSeconds bounds every directory mutation.
	MutationTimeoutSeconds int `mapstructure:"mutation_timeout_seconds" default:"10"`
	// SweepWorkers is the number of members synced concurrently by a sweep.
	SweepWorkers int `mapstructure:"sweep_workers" default:"1"`
	// SettingsCommand is the command named in audit reasons.
	SettingsCommand string `mapstructure:"settings_command" default:"/settings"`
}

// PolicyReader is the read path of the policy store.
type PolicyReader interface {
	IsCommunityVerified(ctx context.Context, guildID string) (bool, error)
	Switches(ctx context.Context, guildID string) (policy.Switches, error)
	RoleBindings(ctx context.Context, guildID string) (map[donor.RoleAlias]string, error)
}

// ProfileFetcher looks up canonical profiles.
type ProfileFetcher interface {
	Profile(ctx context.Context, userID string) (*identity.Profile, error)
}

// Engine decides and applies the actions that bring a subscriber member in
// line with the donor community.
type Engine struct {
	cfg       Config
	donor     donor.Config
	policy    PolicyReader
	directory directory.Provider
	identity  ProfileFetcher
	logger    *zap.Logger
}

// NewEngine creates an engine. profiles may be nil, in which case the identity
// step always fails as unavailable.
func NewEngine(cfg Config, donorCfg donor.Config, policyReader PolicyReader, provider directory.Provider, profiles ProfileFetcher, logger *zap.Logger) *Engine {
	if cfg.MutationTimeoutSeconds <= 0 {
		cfg.MutationTimeoutSeconds = 10
	}
	if cfg.SettingsCommand == "" {
		cfg.SettingsCommand = "/settings"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		cfg:       cfg,
		donor:     donorCfg,
		policy:    policyReader,
		directory: provider,
		identity:  profiles,
		logger:    logger,
	}
}

// State is a named state of a user sync.
type State string

const (
	StateAbsentFromSubscriber State = "AbsentFromSubscriber"
	StatePresentUnverified    State = "PresentUnverified"
	StatePresentVerifiedNoAPI State = "PresentVerifiedNoApi"
	StatePresentVerifiedAPI   State = "PresentVerifiedApi"

	stateDone State = ""
)

var transitions = map[State]func(*run) State{
	StateAbsentFromSubscriber: (*run).absentFromSubscriber,
	StatePresentUnverified:    (*run).presentUnverified,
	StatePresentVerifiedNoAPI: (*run).presentVerifiedNoAPI,
	StatePresentVerifiedAPI:   (*run).presentVerifiedAPI,
}

// run is the state of one SyncUser call. Everything it reads is fetched once.
type run struct {
	e   *Engine
	ctx context.Context
	log *zap.Logger

	guildID     string
	user        directory.User
	verified    bool
	switches    policy.Switches
	member      *directory.Member
	donorMember *directory.Member
	displayName string

	result *Result
}

// SyncUser reconciles one user of a subscriber community. It never returns an
// error: every failure is recorded in the result. Bots are exempt.
func (e *Engine) SyncUser(ctx context.Context, guildID string, user directory.User) *Result {
	result := NewResult()
	if user.Bot {
		return result
	}

	log := e.logger.With(zap.String("guild_id", guildID), zap.String("user_id", user.ID))

	r, ok := e.prepare(ctx, guildID, user, result, log)
	if !ok {
		return result
	}

	state := r.initialState()
	for state != stateDone {
		log.Debug("Sync state", zap.String("state", string(state)))
		state = transitions[state](r)
	}

	log.Info("User synced",
		zap.Bool("success", result.Success),
		zap.Int("mutations", result.Mutations()),
	)
	return result
}

// prepare fetches verification, switches and both member records.
func (e *Engine) prepare(ctx context.Context, guildID string, user directory.User, result *Result, log *zap.Logger) (*run, bool) {
	r := &run{e: e, ctx: ctx, log: log, guildID: guildID, user: user, result: result}

	if guildID == e.donor.GuildID {
		r.fail(StepPolicy, ActionLookup, "the donor community cannot be synced", errors.New("guild is the donor"))
		return nil, false
	}

	verified, err := e.policy.IsCommunityVerified(ctx, guildID)
	if err != nil {
		r.fail(StepPolicy, ActionLookup, "could not read community verification", err)
		return nil, false
	}

	switches, err := e.policy.Switches(ctx, guildID)
	if err != nil {
		r.fail(StepPolicy, ActionLookup, "could not read sync settings", err)
		return nil, false
	}

	member, err := e.directory.Member(ctx, guildID, user.ID)
	if err != nil {
		r.fail(StepPolicy, ActionLookup, "could not look up member", err)
		return nil, false
	}
	if member != nil && member.User.Bot {
		return nil, false
	}

	donorMember, err := e.directory.Member(ctx, e.donor.GuildID, user.ID)
	if err != nil {
		r.fail(StepPolicy, ActionLookup, "could not look up donor member", err)
		return nil, false
	}

	r.verified = verified
	r.switches = switches.Effective(verified)
	r.member = member
	r.donorMember = donorMember
	if member != nil {
		r.user = member.User
		r.displayName = member.DisplayName
	}
	return r, true
}

func (r *run) initialState() State {
	switch {
	case r.member == nil:
		return StateAbsentFromSubscriber
	case !r.verified:
		return StatePresentUnverified
	case r.switches.Enabled(policy.UseAPI):
		return StatePresentVerifiedAPI
	default:
		return StatePresentVerifiedNoAPI
	}
}

// absentFromSubscriber only runs the absence-triggered ban check, and only in
// verified communities.
func (r *run) absentFromSubscriber() State {
	if r.verified {
		r.banCheck(StepBans, true)
	}
	return stateDone
}

func (r *run) presentUnverified() State {
	r.syncRoles()
	r.syncNickname()
	return stateDone
}

func (r *run) presentVerifiedNoAPI() State {
	if next, stop := r.verifiedSteps(); stop {
		return next
	}
	return stateDone
}

func (r *run) presentVerifiedAPI() State {
	if next, stop := r.verifiedSteps(); stop {
		return next
	}
	r.syncIdentity()
	return stateDone
}

// verifiedSteps runs whitelist, policy ban check, roles, nickname and the
// second ban check. A kicked user continues as absent; a banned user is done.
func (r *run) verifiedSteps() (State, bool) {
	if r.whitelist() {
		r.member = nil
		return StateAbsentFromSubscriber, true
	}

	if r.switches.Enabled(policy.SyncBans) && r.banCheck(StepBans, false) {
		return stateDone, true
	}

	r.syncRoles()
	r.syncNickname()

	if r.switches.Enabled(policy.SyncBans) {
		r.banCheck(StepVerifiedBans, false)
	}
	return "", false
}

// whitelist kicks members who are not donor players. It reports whether the
// member was kicked.
func (r *run) whitelist() bool {
	if !r.switches.Enabled(policy.Whitelist) {
		return false
	}
	if r.donorMember != nil && r.donorMember.HasRole(r.e.donor.PlayerRoleID()) {
		return false
	}

	reason := r.e.reason(policy.Whitelist)
	return r.mutate(StepWhitelist, ActionKick, "could not kick user", func(ctx context.Context) error {
		return r.e.directory.Kick(ctx, r.guildID, r.user.ID, reason)
	})
}

// banCheck mirrors the donor ban of the user. An existing local ban is left
// alone; a local ban without a donor ban is lifted only for absent users. It
// reports whether the user was banned by this check.
func (r *run) banCheck(step Step, absent bool) bool {
	donorBan, ok := r.findDonorBan(step)
	if !ok {
		return false
	}

	local, err := r.e.directory.FindBan(r.ctx, r.guildID, r.user.ID)
	if err != nil {
		r.fail(step, ActionLookup, "could not read ban list", err)
		return false
	}

	switch {
	case donorBan != nil && local == nil:
		reason := r.e.banReason(donorBan.Reason)
		return r.mutate(step, ActionBan, "could not ban user", func(ctx context.Context) error {
			return r.e.directory.Ban(ctx, r.guildID, r.user.ID, reason)
		})
	case donorBan == nil && local != nil && absent:
		reason := r.e.reason(policy.SyncBans)
		r.mutate(step, ActionUnban, "could not unban user", func(ctx context.Context) error {
			return r.e.directory.Unban(ctx, r.guildID, r.user.ID, reason)
		})
	}
	return false
}

// findDonorBan scans the donor ban stream for the user. ok is false when the
// stream failed, in which case a failure was recorded.
func (r *run) findDonorBan(step Step) (ban *directory.BanRecord, ok bool) {
	ctx, cancel := context.WithCancel(r.ctx)
	defer cancel()

	for rec := range r.e.directory.Bans(ctx, r.e.donor.GuildID) {
		if rec.Err != nil {
			r.fail(step, ActionLookup, "could not read donor ban list", rec.Err)
			return nil, false
		}
		if rec.UserID == r.user.ID {
			found := rec
			return &found, true
		}
	}

	// A cancelled stream ends early and proves nothing.
	if err := r.ctx.Err(); err != nil {
		r.fail(step, ActionLookup, "could not read donor ban list", err)
		return nil, false
	}
	return nil, true
}

func (r *run) syncRoles() {
	if r.donorMember == nil || !r.switches.Enabled(policy.SyncRoles) {
		return
	}

	bindings, err := r.e.policy.RoleBindings(r.ctx, r.guildID)
	if err != nil {
		r.fail(StepRoles, ActionLookup, "could not read role bindings", err)
		return
	}

	diff := DiffRoles(r.e.donor, bindings, r.verified, r.member.Roles, r.donorMember)
	reason := r.e.reason(policy.SyncRoles)

	// Both mutations are attempted even if the first one fails.
	if len(diff.ToAdd) > 0 {
		r.mutate(StepRoles, ActionGrantRoles, "could not grant roles", func(ctx context.Context) error {
			return r.e.directory.GrantRoles(ctx, r.guildID, r.user.ID, diff.ToAdd, reason)
		})
	}
	if len(diff.ToRemove) > 0 {
		r.mutate(StepRoles, ActionRevokeRoles, "could not revoke roles", func(ctx context.Context) error {
			return r.e.directory.RevokeRoles(ctx, r.guildID, r.user.ID, diff.ToRemove, reason)
		})
	}
}

func (r *run) syncNickname() {
	if r.donorMember == nil || !r.switches.Enabled(policy.SyncNicknames) {
		return
	}
	r.rename(StepNickname, r.donorMember.DisplayName, r.e.reason(policy.SyncNicknames), "could not change nickname")
}

// syncIdentity queries the identity service. Its failure is recorded once and
// does not undo earlier steps.
func (r *run) syncIdentity() {
	if r.e.identity == nil {
		r.fail(StepIdentity, ActionLookup, identity.ErrUnavailable.Error(), identity.ErrUnavailable)
		return
	}

	profile, err := r.e.identity.Profile(r.ctx, r.user.ID)
	if err != nil {
		r.fail(StepIdentity, ActionLookup, identity.ErrUnavailable.Error(), err)
		return
	}

	if r.switches.Enabled(policy.SyncNicknames) && profile.Nick != nil {
		r.rename(StepIdentity, *profile.Nick, r.e.reason(policy.UseAPI), "[API] could not change nickname")
	}
}

// rename sets the display name unless it already matches.
func (r *run) rename(step Step, name, reason, failure string) {
	if name == "" || name == r.displayName {
		return
	}
	ok := r.mutate(step, ActionRename, failure, func(ctx context.Context) error {
		return r.e.directory.SetDisplayName(ctx, r.guildID, r.user.ID, name, reason)
	})
	if ok {
		r.displayName = name
	}
}

// mutate applies one directory mutation under the mutation timeout and records
// its outcome. A timeout is reported as a permission failure.
func (r *run) mutate(step Step, action ActionType, failure string, apply func(ctx context.Context) error) bool {
	ctx, cancel := context.WithTimeout(r.ctx, time.Duration(r.e.cfg.MutationTimeoutSeconds)*time.Second)
	defer cancel()

	err := apply(ctx)
	if err != nil && errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, directory.ErrPermissionDenied) {
		err = fmt.Errorf("%w: %w", directory.ErrPermissionDenied, err)
	}
	if err != nil {
		r.fail(step, action, failure, err)
		return false
	}

	r.result.Add(Outcome{Step: step, Action: action})
	return true
}

func (r *run) fail(step Step, action ActionType, message string, err error) {
	r.log.Warn("Sync action failed",
		zap.String("step", string(step)),
		zap.String("action", string(action)),
		zap.Error(err),
	)
	r.result.Add(Outcome{
		Step:    step,
		Action:  action,
		Message: fmt.Sprintf("%s (%s)", message, r.label()),
		Err:     err,
	})
}

func (r *run) label() string {
	if r.user.Username != "" {
		return r.user.Username
	}
	return r.user.ID
}
