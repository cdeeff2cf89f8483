package reconcile

import (
	"sort"
	"testing"

	"guild-sync/core/directory"
	"guild-sync/core/donor"

	"github.com/stretchr/testify/assert"
)

var testDonor = donor.Config{
	GuildID:    "100",
	PlayerRole: "player",
	Roles: []donor.Role{
		{Alias: "player", Name: "Player", RoleID: "1"},
		{Alias: "helper", Name: "Helper", RoleID: "2", VerifiedOnly: true},
		{Alias: "builder", Name: "Builder", RoleID: "3"},
	},
}

var testBindings = map[donor.RoleAlias]string{
	"player":  "900",
	"helper":  "901",
	"builder": "902",
}

func donorMember(roles ...string) *directory.Member {
	return &directory.Member{GuildID: "100", User: directory.User{ID: "42", Username: "steve"}, DisplayName: "Steve", Roles: roles}
}

// applyDiff returns the role set after granting ToAdd and revoking ToRemove.
func applyDiff(current []string, diff RoleDiff) []string {
	set := make(map[string]struct{})
	for _, id := range current {
		set[id] = struct{}{}
	}
	for _, id := range diff.ToAdd {
		set[id] = struct{}{}
	}
	for _, id := range diff.ToRemove {
		delete(set, id)
	}
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func TestDiffRoles(t *testing.T) {
	tests := []struct {
		name     string
		verified bool
		current  []string
		donor    *directory.Member
		want     RoleDiff
	}{
		{
			name:    "grant missing roles",
			current: []string{"5"},
			donor:   donorMember("1", "3"),
			want:    RoleDiff{ToAdd: []string{"900", "902"}},
		},
		{
			name:    "revoke roles the donor member lost",
			current: []string{"900", "902", "5"},
			donor:   donorMember("1"),
			want:    RoleDiff{ToRemove: []string{"902"}},
		},
		{
			name:    "donor member absent revokes every mapped role",
			current: []string{"900", "902", "5"},
			donor:   nil,
			want:    RoleDiff{ToRemove: []string{"900", "902"}},
		},
		{
			name:     "verified only alias ignored in unverified community",
			verified: false,
			current:  []string{"901"},
			donor:    donorMember("1", "2"),
			want:     RoleDiff{ToAdd: []string{"900"}},
		},
		{
			name:     "verified only alias applied in verified community",
			verified: true,
			current:  []string{},
			donor:    donorMember("1", "2"),
			want:     RoleDiff{ToAdd: []string{"900", "901"}},
		},
		{
			name:    "already in sync",
			current: []string{"900", "902"},
			donor:   donorMember("1", "3"),
			want:    RoleDiff{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DiffRoles(testDonor, testBindings, tt.verified, tt.current, tt.donor)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDiffRoles_SharedLocalRole(t *testing.T) {
	// Two aliases bound to one local role: holding either donor role keeps it.
	bindings := map[donor.RoleAlias]string{"player": "900", "builder": "900"}

	got := DiffRoles(testDonor, bindings, true, []string{"900"}, donorMember("3"))
	assert.True(t, got.Empty())
}

func TestDiffRoles_UnknownAliasIgnored(t *testing.T) {
	bindings := map[donor.RoleAlias]string{"retired": "950", "player": "900"}

	got := DiffRoles(testDonor, bindings, true, []string{"950"}, donorMember())
	assert.Equal(t, RoleDiff{}, got)
}

func TestDiffRoles_Properties(t *testing.T) {
	subsets := [][]string{{}, {"1"}, {"2"}, {"3"}, {"1", "2"}, {"1", "3"}, {"2", "3"}, {"1", "2", "3"}}
	localSets := [][]string{{}, {"900"}, {"901", "5"}, {"900", "901", "902"}, {"902", "7"}}

	for _, verified := range []bool{false, true} {
		for _, donorRoles := range subsets {
			for _, current := range localSets {
				dm := donorMember(donorRoles...)
				diff := DiffRoles(testDonor, testBindings, verified, current, dm)

				// Disjoint
				for _, add := range diff.ToAdd {
					assert.NotContains(t, diff.ToRemove, add)
				}

				// Applying the diff is a fixed point
				next := applyDiff(current, diff)
				again := DiffRoles(testDonor, testBindings, verified, next, dm)
				assert.True(t, again.Empty(), "donor=%v current=%v", donorRoles, current)
			}
		}
	}
}
