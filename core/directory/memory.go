package directory

import (
	"context"
	"sort"
	"sync"
)

// Operation names a mutating Provider call.
type Operation string

const (
	OpKick   Operation = "kick"
	OpBan    Operation = "ban"
	OpUnban  Operation = "unban"
	OpGrant  Operation = "grant"
	OpRevoke Operation = "revoke"
	OpRename Operation = "rename"
)

// Call records one mutation applied to a Memory directory.
type Call struct {
	Op      Operation
	GuildID string
	UserID  string
	Args    []string
	Reason  string
}

// Memory is an in-process Provider. Mutations change its state, so a second
// sync against the same Memory sees the result of the first.
type Memory struct {
	mu      sync.Mutex
	members map[string]map[string]*Member
	bans    map[string]map[string]string
	fail    map[Operation]error
	calls   []Call
}

// NewMemory creates an empty directory.
func NewMemory() *Memory {
	return &Memory{
		members: make(map[string]map[string]*Member),
		bans:    make(map[string]map[string]string),
		fail:    make(map[Operation]error),
	}
}

// AddMember stores a copy of m under its guild.
func (d *Memory) AddMember(m Member) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.members[m.GuildID] == nil {
		d.members[m.GuildID] = make(map[string]*Member)
	}
	cp := m
	cp.Roles = append([]string(nil), m.Roles...)
	d.members[m.GuildID][m.User.ID] = &cp
}

// AddBan records a ban.
func (d *Memory) AddBan(guildID, userID, reason string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.addBan(guildID, userID, reason)
}

// Fail makes every later call of op return err. A nil err clears it.
func (d *Memory) Fail(op Operation, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err == nil {
		delete(d.fail, op)
		return
	}
	d.fail[op] = err
}

// Calls returns the mutations applied so far, including failed ones.
func (d *Memory) Calls() []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Call(nil), d.calls...)
}

// ResetCalls forgets recorded mutations.
func (d *Memory) ResetCalls() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = nil
}

func (d *Memory) Member(_ context.Context, guildID, userID string) (*Member, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	m, ok := d.members[guildID][userID]
	if !ok {
		return nil, nil
	}
	cp := *m
	cp.Roles = append([]string(nil), m.Roles...)
	return &cp, nil
}

// Members returns the guild members ordered by user id.
func (d *Memory) Members(_ context.Context, guildID string) ([]*Member, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]*Member, 0, len(d.members[guildID]))
	for _, m := range d.members[guildID] {
		cp := *m
		cp.Roles = append([]string(nil), m.Roles...)
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].User.ID < out[j].User.ID })
	return out, nil
}

func (d *Memory) Bans(ctx context.Context, guildID string) <-chan BanRecord {
	d.mu.Lock()
	records := make([]BanRecord, 0, len(d.bans[guildID]))
	for userID, reason := range d.bans[guildID] {
		records = append(records, BanRecord{GuildID: guildID, UserID: userID, Reason: reason})
	}
	d.mu.Unlock()

	sort.Slice(records, func(i, j int) bool { return records[i].UserID < records[j].UserID })

	ch := make(chan BanRecord)
	go func() {
		defer close(ch)
		for _, rec := range records {
			select {
			case ch <- rec:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

func (d *Memory) FindBan(_ context.Context, guildID, userID string) (*BanRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	reason, ok := d.bans[guildID][userID]
	if !ok {
		return nil, nil
	}
	return &BanRecord{GuildID: guildID, UserID: userID, Reason: reason}, nil
}

func (d *Memory) Kick(_ context.Context, guildID, userID, reason string) error {
	return d.mutate(Call{Op: OpKick, GuildID: guildID, UserID: userID, Reason: reason}, func() {
		delete(d.members[guildID], userID)
	})
}

func (d *Memory) Ban(_ context.Context, guildID, userID, reason string) error {
	return d.mutate(Call{Op: OpBan, GuildID: guildID, UserID: userID, Reason: reason}, func() {
		d.addBan(guildID, userID, reason)
		delete(d.members[guildID], userID)
	})
}

func (d *Memory) Unban(_ context.Context, guildID, userID, reason string) error {
	return d.mutate(Call{Op: OpUnban, GuildID: guildID, UserID: userID, Reason: reason}, func() {
		delete(d.bans[guildID], userID)
	})
}

func (d *Memory) GrantRoles(_ context.Context, guildID, userID string, roleIDs []string, reason string) error {
	call := Call{Op: OpGrant, GuildID: guildID, UserID: userID, Args: append([]string(nil), roleIDs...), Reason: reason}
	return d.mutate(call, func() {
		m, ok := d.members[guildID][userID]
		if !ok {
			return
		}
		for _, id := range roleIDs {
			if !m.HasRole(id) {
				m.Roles = append(m.Roles, id)
			}
		}
	})
}

func (d *Memory) RevokeRoles(_ context.Context, guildID, userID string, roleIDs []string, reason string) error {
	call := Call{Op: OpRevoke, GuildID: guildID, UserID: userID, Args: append([]string(nil), roleIDs...), Reason: reason}
	return d.mutate(call, func() {
		m, ok := d.members[guildID][userID]
		if !ok {
			return
		}
		drop := make(map[string]struct{}, len(roleIDs))
		for _, id := range roleIDs {
			drop[id] = struct{}{}
		}
		kept := m.Roles[:0]
		for _, id := range m.Roles {
			if _, ok := drop[id]; !ok {
				kept = append(kept, id)
			}
		}
		m.Roles = kept
	})
}

func (d *Memory) SetDisplayName(_ context.Context, guildID, userID, name, reason string) error {
	return d.mutate(Call{Op: OpRename, GuildID: guildID, UserID: userID, Args: []string{name}, Reason: reason}, func() {
		if m, ok := d.members[guildID][userID]; ok {
			m.DisplayName = name
		}
	})
}

func (d *Memory) mutate(call Call, apply func()) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.calls = append(d.calls, call)
	if err := d.fail[call.Op]; err != nil {
		return err
	}
	apply()
	return nil
}

func (d *Memory) addBan(guildID, userID, reason string) {
	if d.bans[guildID] == nil {
		d.bans[guildID] = make(map[string]string)
	}
	d.bans[guildID][userID] = reason
}
