package domain

import (
	"slices"
	"strings"
)

// Permission is a CRUD permission on monitoring locations.
type Permission string

const (
	PermView   Permission = "view"
	PermAdd    Permission = "add"
	PermChange Permission = "change"
	PermDelete Permission = "delete"
)

// AllPermissions lists every monitoring location permission.
var AllPermissions = []Permission{PermView, PermAdd, PermChange, PermDelete}

// Principal is the authenticated caller supplied by the identity provider.
type Principal struct {
	Username    string
	Email       string
	Superuser   bool
	Groups      []string
	Permissions []Permission
}

// AgencyGroups maps agency codes to the group name that grants access to
// them. Groups with no explicit entry map to the agency whose code equals the
// upper-cased group name.
type AgencyGroups struct {
	byGroup map[string]string
}

// NewAgencyGroups builds a mapping from agency code to group name.
func NewAgencyGroups(agencyToGroup map[string]string) AgencyGroups {
	byGroup := make(map[string]string, len(agencyToGroup))
	for agency, group := range agencyToGroup {
		byGroup[strings.ToUpper(strings.TrimSpace(group))] = strings.ToUpper(strings.TrimSpace(agency))
	}
	return AgencyGroups{byGroup: byGroup}
}

// AgencyFor returns the agency code granted by group.
func (g AgencyGroups) AgencyFor(group string) string {
	key := strings.ToUpper(strings.TrimSpace(group))
	if agency, ok := g.byGroup[key]; ok {
		return agency
	}
	return key
}

// AccessContext is a principal resolved against the agency mapping. It is
// computed once per request.
type AccessContext struct {
	Username    string
	Superuser   bool
	AgencyCodes []string
	permissions map[Permission]bool
}

// Resolve derives the access context for p. Agency codes keep the order of
// the principal's groups with duplicates removed.
func (g AgencyGroups) Resolve(p Principal) AccessContext {
	ac := AccessContext{
		Username:    p.Username,
		Superuser:   p.Superuser,
		permissions: make(map[Permission]bool, len(p.Permissions)),
	}
	for _, group := range p.Groups {
		code := g.AgencyFor(group)
		if code != "" && !slices.Contains(ac.AgencyCodes, code) {
			ac.AgencyCodes = append(ac.AgencyCodes, code)
		}
	}
	for _, perm := range p.Permissions {
		ac.permissions[perm] = true
	}
	return ac
}

// Has reports whether the context carries perm, ignoring agency scope.
func (ac AccessContext) Has(perm Permission) bool {
	return ac.Superuser || ac.permissions[perm]
}

// InAgency reports whether code is one of the context's agencies.
func (ac AccessContext) InAgency(code string) bool {
	return slices.Contains(ac.AgencyCodes, strings.ToUpper(strings.TrimSpace(code)))
}

// Scope restricts which monitoring locations a caller may see. An All scope
// matches every row; otherwise only rows whose agency is in AgencyCodes.
type Scope struct {
	All         bool
	AgencyCodes []string
}

// VisibleScope returns the rows visible to ac.
func VisibleScope(ac AccessContext) Scope {
	if ac.Superuser {
		return Scope{All: true}
	}
	return Scope{AgencyCodes: slices.Clone(ac.AgencyCodes)}
}

// Contains reports whether a record of the given agency falls in the scope.
func (s Scope) Contains(agencyCode string) bool {
	return s.All || slices.Contains(s.AgencyCodes, strings.ToUpper(agencyCode))
}

// Can reports whether ac holds perm for loc. A nil loc checks the
// permission alone, as for a create before the record exists.
func Can(ac AccessContext, perm Permission, loc *MonitoringLocation) bool {
	if ac.Superuser {
		return true
	}
	if !ac.permissions[perm] {
		return false
	}
	return loc == nil || ac.InAgency(loc.AgencyCode)
}

// CanView reports whether ac may read loc.
func CanView(ac AccessContext, loc *MonitoringLocation) bool { return Can(ac, PermView, loc) }

// CanAdd reports whether ac may create records.
func CanAdd(ac AccessContext) bool { return Can(ac, PermAdd, nil) }

// CanChange reports whether ac may modify loc.
func CanChange(ac AccessContext, loc *MonitoringLocation) bool { return Can(ac, PermChange, loc) }

// CanDelete reports whether ac may delete loc.
func CanDelete(ac AccessContext, loc *MonitoringLocation) bool { return Can(ac, PermDelete, loc) }

// DefaultAgency returns the agency assigned to records created by ac when
// none was given: the first agency for non-superusers, blank otherwise.
func DefaultAgency(ac AccessContext) string {
	if ac.Superuser || len(ac.AgencyCodes) == 0 {
		return ""
	}
	return ac.AgencyCodes[0]
}

// ApplyDefaultAgency sets loc's agency to DefaultAgency(ac) when it is blank.
func ApplyDefaultAgency(ac AccessContext, loc *MonitoringLocation) {
	if blank(loc.AgencyCode) {
		loc.AgencyCode = DefaultAgency(ac)
	}
}

// CanFetchFromNWIS reports whether ac may import sites owned by nwisAgency.
func CanFetchFromNWIS(ac AccessContext, nwisAgency string) bool {
	return ac.Superuser || (ac.InAgency(nwisAgency) && ac.Has(PermAdd))
}
