package export

import (
	"context"
	"strings"

	"github.com/edutools/lms-export/internal"
)

// RoleSet is the outcome of resolving a requested-roles specification: the
// ordered list of requested role shortnames plus the shortname to id map
// for the whole registry. It is built fresh per export run and passed
// explicitly into the record builder, never kept as shared state.
type RoleSet struct {
	requested []string
	ids       map[string]int64
}

// Requested returns the resolved role shortnames in request order (registry
// order when all roles were requested).
func (s RoleSet) Requested() []string {
	requested := make([]string, len(s.requested))
	copy(requested, s.requested)
	return requested
}

// ID returns the registry id for a role shortname.
func (s RoleSet) ID(shortname string) (int64, bool) {
	id, ok := s.ids[shortname]
	return id, ok
}

// Empty reports whether the set carries no resolved registry at all, the
// marker of a RoleSet that never went through ResolveRoles.
func (s RoleSet) Empty() bool {
	return s.ids == nil
}

// ResolveRoles validates spec against the host's role registry. "all"
// expands to every role except the reserved system roles; an explicit comma
// separated list fails as a whole on the first unknown entry.
func ResolveRoles(ctx context.Context, store Store, spec string) (RoleSet, error) {
	roles, err := store.AllRoles(ctx)
	if err != nil {
		return RoleSet{}, err
	}

	ids := make(map[string]int64, len(roles))
	for _, role := range roles {
		ids[role.Shortname] = role.ID
	}

	var requested []string
	if strings.TrimSpace(spec) == RolesAll {
		for _, role := range roles {
			if !reservedRoles[role.Shortname] {
				requested = append(requested, role.Shortname)
			}
		}
	} else {
		for _, entry := range strings.Split(spec, ",") {
			shortname := strings.TrimSpace(entry)
			if _, ok := ids[shortname]; !ok {
				return RoleSet{}, internal.ErrInvalidRole
			}
			requested = append(requested, shortname)
		}
	}

	return RoleSet{requested: requested, ids: ids}, nil
}
