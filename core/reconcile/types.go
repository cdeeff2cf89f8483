package reconcile

import "time"

// Step identifies the part of a user sync that produced an outcome.
type Step string

const (
	// StepPolicy covers reading verification, switches and member records.
	StepPolicy Step = "policy"
	// StepWhitelist removes members who are not donor players.
	StepWhitelist Step = "whitelist"
	// StepBans mirrors the donor ban list.
	StepBans Step = "bans"
	// StepRoles grants and revokes bound roles.
	StepRoles Step = "roles"
	// StepNickname mirrors the donor display name.
	StepNickname Step = "nickname"
	// StepVerifiedBans is the second ban check of verified communities.
	StepVerifiedBans Step = "verified_bans"
	// StepIdentity pulls the canonical nickname from the identity service.
	StepIdentity Step = "identity"
)

// ActionType represents the kind of call behind an outcome.
type ActionType string

const (
	ActionLookup      ActionType = "lookup"
	ActionKick        ActionType = "kick"
	ActionBan         ActionType = "ban"
	ActionUnban       ActionType = "unban"
	ActionGrantRoles  ActionType = "grant_roles"
	ActionRevokeRoles ActionType = "revoke_roles"
	ActionRename      ActionType = "rename"
)

// Outcome is the result of one attempted action.
type Outcome struct {
	// Step is the sync step that attempted the action.
	Step Step `json:"step"`

	// Action is the attempted call.
	Action ActionType `json:"action"`

	// Failed is true when the action did not succeed.
	Failed bool `json:"failed"`

	// Message is the human-readable failure. Empty on success.
	Message string `json:"message,omitempty"`

	// Err is the underlying failure. Never crosses the API boundary.
	Err error `json:"-"`
}

// Result accumulates the outcomes of one user sync. Success is false iff at
// least one outcome failed; Errors keeps failure messages in step order.
type Result struct {
	Success  bool      `json:"success"`
	Errors   []string  `json:"errors"`
	Outcomes []Outcome `json:"outcomes"`
}

// NewResult creates an empty, successful result.
func NewResult() *Result {
	return &Result{Success: true, Errors: []string{}, Outcomes: []Outcome{}}
}

// Add appends an outcome. Entries are never removed or reordered.
func (r *Result) Add(o Outcome) {
	if o.Err != nil {
		o.Failed = true
		if o.Message == "" {
			o.Message = o.Err.Error()
		}
	}
	r.Outcomes = append(r.Outcomes, o)
	if o.Failed {
		r.Success = false
		r.Errors = append(r.Errors, o.Message)
	}
}

// Merge appends every outcome of other.
func (r *Result) Merge(other *Result) {
	if other == nil {
		return
	}
	for _, o := range other.Outcomes {
		r.Add(o)
	}
}

// Mutations counts the attempted outcomes that change remote state.
func (r *Result) Mutations() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Action != ActionLookup {
			n++
		}
	}
	return n
}

// MemberStatus is the sweep status of one member.
type MemberStatus string

const (
	MemberSynced  MemberStatus = "synced"
	MemberFailed  MemberStatus = "failed"
	MemberSkipped MemberStatus = "skipped"
)

// MemberOutcome is the sweep entry of one member.
type MemberOutcome struct {
	UserID   string       `json:"user_id"`
	Username string       `json:"username"`
	Status   MemberStatus `json:"status"`
	Errors   []string     `json:"errors,omitempty"`
}

// Progress is reported after every member of a sweep.
type Progress struct {
	// Done is the number of members processed so far.
	Done int `json:"done"`

	// Total is the number of members in the sweep.
	Total int `json:"total"`

	// Member is the member that was just processed.
	Member MemberOutcome `json:"member"`
}

// SweepReport aggregates a full-membership sweep.
type SweepReport struct {
	GuildID    string          `json:"guild_id"`
	Success    bool            `json:"success"`
	Total      int             `json:"total"`
	Synced     int             `json:"synced"`
	Failed     int             `json:"failed"`
	Skipped    int             `json:"skipped"`
	Members    []MemberOutcome `json:"members"`
	Errors     []string        `json:"errors"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
}

func (s *SweepReport) record(m MemberOutcome) {
	s.Members = append(s.Members, m)
	switch m.Status {
	case MemberSynced:
		s.Synced++
	case MemberFailed:
		s.Failed++
		s.Success = false
		s.Errors = append(s.Errors, m.Errors...)
	case MemberSkipped:
		s.Skipped++
	}
}
