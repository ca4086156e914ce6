// Package auth contains the role model and the authorization gate for
// resolved actions.
package auth

// Role is an authenticated user role. The empty string means the session is
// not yet known (anonymous/loading), which the gate treats permissively so
// public and auth endpoints stay reachable before login completes.
type Role string

const (
	// RoleAdvisor has full access, including charge operations.
	RoleAdvisor Role = "advisor"
	// RoleSecretary handles binder logistics and client records but may not
	// touch charges.
	RoleSecretary Role = "secretary"
)

// IsValid returns true if the role is a known authenticated role.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdvisor, RoleSecretary:
		return true
	default:
		return false
	}
}

// String returns the string representation of the Role.
func (r Role) String() string {
	return string(r)
}

// RoleRequirement is the minimum role an endpoint or action demands.
type RoleRequirement string

const (
	// RequireAdvisor restricts to advisors.
	RequireAdvisor RoleRequirement = "advisor"
	// RequireAdvisorOrSecretary admits both authenticated roles.
	RequireAdvisorOrSecretary RoleRequirement = "advisor_or_secretary"
	// RequirePublic admits everyone, including anonymous sessions.
	RequirePublic RoleRequirement = "public"
)

// IsValid returns true if the requirement is a known value.
func (rr RoleRequirement) IsValid() bool {
	switch rr {
	case RequireAdvisor, RequireAdvisorOrSecretary, RequirePublic:
		return true
	default:
		return false
	}
}

// Allows reports whether a known role satisfies the requirement.
// The anonymous (empty) role is handled by the gate, not here: once a role
// is known, an advisor-only requirement rejects everything but advisor, and
// an unknown role string never satisfies an authenticated requirement.
func (rr RoleRequirement) Allows(r Role) bool {
	switch rr {
	case RequirePublic:
		return true
	case RequireAdvisorOrSecretary:
		return r == RoleAdvisor || r == RoleSecretary
	case RequireAdvisor:
		return r == RoleAdvisor
	default:
		return false
	}
}
