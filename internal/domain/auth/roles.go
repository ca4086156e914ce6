package auth

import "github.com/matanmalka1/actiongate/internal/domain/action"

// canonicalRequirements is the engine's own per-action role table. It is one
// of the two sources of truth the gate cross-checks; the other is the
// contract registry entry for the resolved endpoint. Charge money movement
// is advisor-only; binder logistics and client status are open to both
// authenticated roles.
var canonicalRequirements = map[action.CanonicalID]RoleRequirement{
	action.CanonicalReceive:      RequireAdvisorOrSecretary,
	action.CanonicalReady:        RequireAdvisorOrSecretary,
	action.CanonicalReturn:       RequireAdvisorOrSecretary,
	action.CanonicalFreeze:       RequireAdvisorOrSecretary,
	action.CanonicalActivate:     RequireAdvisorOrSecretary,
	action.CanonicalMarkPaid:     RequireAdvisor,
	action.CanonicalIssueCharge:  RequireAdvisor,
	action.CanonicalCancelCharge: RequireAdvisor,
}

// RequirementFor returns the role requirement for a canonical action.
func RequirementFor(id action.CanonicalID) RoleRequirement {
	if rr, ok := canonicalRequirements[id]; ok {
		return rr
	}
	// Unlisted canonical ids default to the stricter requirement.
	return RequireAdvisor
}

// IsActionAllowedForRole reports whether a known role may perform a
// canonical action according to the action's own role table. The anonymous
// role is not this function's concern; the gate passes it through.
func IsActionAllowedForRole(id action.CanonicalID, r Role) bool {
	return RequirementFor(id).Allows(r)
}
