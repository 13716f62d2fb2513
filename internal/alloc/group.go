package alloc

import (
	"strings"

	"hostel-allocation-backend/internal/model"
)

// Group is one applicant group: a primary registration plus the dependents
// whose parent_application_id points at it. Groups are derived on demand and
// never persisted.
type Group struct {
	Primary    model.Registration
	Dependents []model.Registration
}

// Members returns the group's registrations, primary first.
func (g *Group) Members() []model.Registration {
	members := make([]model.Registration, 0, 1+len(g.Dependents))
	members = append(members, g.Primary)
	return append(members, g.Dependents...)
}

// Size returns the number of members in the group.
func (g *Group) Size() int {
	return 1 + len(g.Dependents)
}

// UnassignedMembers returns the members that do not currently hold a bed.
func (g *Group) UnassignedMembers(assigned map[int64]struct{}) []model.Registration {
	var out []model.Registration
	for _, m := range g.Members() {
		if _, ok := assigned[m.ID]; !ok {
			out = append(out, m)
		}
	}
	return out
}

// FullyHoused reports whether every member already holds a bed. Such a group
// stays visible in the picker but cannot be selected further.
func (g *Group) FullyHoused(assigned map[int64]struct{}) bool {
	return len(g.UnassignedMembers(assigned)) == 0
}

// SelectionState describes how much of a group's unassigned membership is in
// the operator's current selection.
type SelectionState string

const (
	SelectionNone    SelectionState = "none"
	SelectionPartial SelectionState = "partial"
	SelectionFull    SelectionState = "full"
)

// Selected computes the group's selection state. Members that already hold a
// bed are excluded from both the denominator and the check, so a group whose
// remaining members are all selected counts as fully selected even when some
// members were housed in an earlier pass.
func (g *Group) Selected(selected, assigned map[int64]struct{}) SelectionState {
	unassigned := g.UnassignedMembers(assigned)
	if len(unassigned) == 0 {
		return SelectionNone
	}

	hits := 0
	for _, m := range unassigned {
		if _, ok := selected[m.ID]; ok {
			hits++
		}
	}
	switch hits {
	case 0:
		return SelectionNone
	case len(unassigned):
		return SelectionFull
	default:
		return SelectionPartial
	}
}

// BuildGroups partitions the available registrations into applicant groups.
// Each primary (no parent application id) seeds a group; each dependent is
// attached to its parent's group. A dependent whose declared parent is not
// in the available set becomes its own standalone group, so the output always
// partitions the input exactly.
func BuildGroups(available []model.Registration) []Group {
	groups := make([]Group, 0, len(available))
	byApplicationID := make(map[string]int)

	for _, reg := range available {
		if reg.IsPrimary() {
			byApplicationID[reg.ApplicationID] = len(groups)
			groups = append(groups, Group{Primary: reg})
		}
	}

	for _, reg := range available {
		if reg.IsPrimary() {
			continue
		}
		if idx, ok := byApplicationID[*reg.ParentApplicationID]; ok {
			groups[idx].Dependents = append(groups[idx].Dependents, reg)
		} else {
			// Parent already housed or otherwise absent; treat the
			// dependent as a standalone group.
			groups = append(groups, Group{Primary: reg})
		}
	}

	return groups
}

// FilterGroups returns the groups with at least one member whose name or
// application id contains the query, case-insensitively. An empty query
// matches everything.
func FilterGroups(groups []Group, query string) []Group {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return groups
	}

	var out []Group
	for _, g := range groups {
		for _, m := range g.Members() {
			if strings.Contains(strings.ToLower(m.Name), query) ||
				strings.Contains(strings.ToLower(m.ApplicationID), query) {
				out = append(out, g)
				break
			}
		}
	}
	return out
}
