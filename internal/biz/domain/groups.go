package domain

import "strings"

// GroupRegistry maps known sender addresses to group names.
// Lookups are case-insensitive; addresses absent from every group
// resolve to LabelOther.
type GroupRegistry struct {
	groups map[string][]string
	byAddr map[string]string
}

// NewGroupRegistry builds a registry from a name -> addresses mapping
func NewGroupRegistry(groups map[string][]string) *GroupRegistry {
	r := &GroupRegistry{
		groups: make(map[string][]string, len(groups)),
		byAddr: make(map[string]string),
	}
	for name, addrs := range groups {
		members := make([]string, 0, len(addrs))
		for _, addr := range addrs {
			lowered := strings.ToLower(strings.TrimSpace(addr))
			if lowered == "" {
				continue
			}
			members = append(members, lowered)
			r.byAddr[lowered] = name
		}
		r.groups[name] = members
	}
	return r
}

// LabelFor returns the group name for an address, or LabelOther
func (r *GroupRegistry) LabelFor(address string) string {
	addr := strings.ToLower(BareAddress(address))
	if name, ok := r.byAddr[addr]; ok {
		return name
	}
	return LabelOther
}

// Groups returns a copy of the configured mapping
func (r *GroupRegistry) Groups() map[string][]string {
	out := make(map[string][]string, len(r.groups))
	for name, addrs := range r.groups {
		out[name] = append([]string(nil), addrs...)
	}
	return out
}

// Size returns the number of known addresses
func (r *GroupRegistry) Size() int {
	return len(r.byAddr)
}
