package models

// Role is the closed set of caller roles forwarded by the gateway.
type Role string

const (
	RoleTester    Role = "tester"
	RoleDeveloper Role = "developer"
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
)

// Actor is the authenticated caller as resolved from the gateway headers.
type Actor struct {
	ID    string
	Roles []Role
}

func (a Actor) Has(role Role) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Capability checks. Handlers call these instead of comparing role strings
// inline, so each operation has exactly one authorization rule.

func (a Actor) CanSubmitBugReports() bool {
	return a.Has(RoleTester)
}

// CanProcessBugReport: only the project's owning developer or an admin may
// approve, reject or resolve reports against it.
func (a Actor) CanProcessBugReport(project *Project) bool {
	if a.Has(RoleAdmin) {
		return true
	}
	return a.Has(RoleDeveloper) && project.PostedByID == a.ID
}

func (a Actor) CanFileDisputes() bool {
	return a.Has(RoleTester)
}

func (a Actor) CanViewAllReports() bool {
	return a.Has(RoleAdmin)
}
