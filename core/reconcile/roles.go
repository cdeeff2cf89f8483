package reconcile

import (
	"sort"

	"guild-sync/core/directory"
	"guild-sync/core/donor"
)

// RoleDiff is the pair of bulk role mutations that brings a subscriber member
// in line with the donor. ToAdd and ToRemove are disjoint and sorted.
type RoleDiff struct {
	ToAdd    []string `json:"to_add"`
	ToRemove []string `json:"to_remove"`
}

// Empty reports whether no mutation is needed.
func (d RoleDiff) Empty() bool {
	return len(d.ToAdd) == 0 && len(d.ToRemove) == 0
}

// DiffRoles computes the role changes for one member.
//
// A bound local role is required iff the donor member holds the donor role of
// its alias. With no donor member nothing is required, so every mapped role
// the member holds is removed. Aliases restricted to verified communities are
// ignored in unverified ones, as are bindings to aliases the donor table no
// longer declares. Roles that are not mapped at all are never touched.
func DiffRoles(cfg donor.Config, bindings map[donor.RoleAlias]string, verified bool, current []string, donorMember *directory.Member) RoleDiff {
	mapped := make(map[string]struct{}, len(bindings))
	required := make(map[string]struct{}, len(bindings))

	for alias, localID := range bindings {
		role, ok := cfg.Role(alias)
		if !ok || localID == "" {
			continue
		}
		if role.VerifiedOnly && !verified {
			continue
		}
		mapped[localID] = struct{}{}
		if donorMember != nil && donorMember.HasRole(role.RoleID) {
			required[localID] = struct{}{}
		}
	}

	held := make(map[string]struct{}, len(current))
	for _, id := range current {
		held[id] = struct{}{}
	}

	diff := RoleDiff{}
	for id := range required {
		if _, ok := held[id]; !ok {
			diff.ToAdd = append(diff.ToAdd, id)
		}
	}
	for id := range mapped {
		_, isHeld := held[id]
		_, isRequired := required[id]
		if isHeld && !isRequired {
			diff.ToRemove = append(diff.ToRemove, id)
		}
	}

	sort.Strings(diff.ToAdd)
	sort.Strings(diff.ToRemove)
	return diff
}
