package auth

import (
	"log/slog"

	"github.com/matanmalka1/actiongate/internal/domain/action"
)

// UnknownEndpointPolicy decides what happens when a resolved endpoint has no
// contract registry entry. The historical behavior is fail-open: unknown
// endpoints are treated as publicly allowed. That trade-off (availability
// over strictness) is preserved as the default but configurable.
type UnknownEndpointPolicy string

const (
	// PolicyAllow treats unknown endpoints as publicly allowed (fail-open).
	PolicyAllow UnknownEndpointPolicy = "allow"
	// PolicyDeny rejects actions whose endpoint has no contract entry.
	PolicyDeny UnknownEndpointPolicy = "deny"
)

// IsValid returns true if the policy is a known value.
func (p UnknownEndpointPolicy) IsValid() bool {
	return p == PolicyAllow || p == PolicyDeny
}

// Decision is the gate's verdict for one action.
type Decision struct {
	// Allowed is true when the action may be materialized.
	Allowed bool
	// Reason explains a rejection; empty when allowed.
	Reason string
}

// allowed is the positive decision.
var allowed = Decision{Allowed: true}

func denied(reason string) Decision {
	return Decision{Reason: reason}
}

// Gate applies the two independent role checks from the resolution pipeline:
// the canonical action's own role table, and the contract registry's role
// for the resolved endpoint. Both must pass. The registry lookup itself is
// the caller's job (the gate stays free of the contract package); the entry
// role and whether an entry was found are passed in.
type Gate struct {
	policy  UnknownEndpointPolicy
	logger  *slog.Logger
	devMode bool
}

// NewGate creates a Gate with the given unknown-endpoint policy.
// A nil logger disables the development-time warnings.
func NewGate(policy UnknownEndpointPolicy, logger *slog.Logger, devMode bool) *Gate {
	if !policy.IsValid() {
		policy = PolicyAllow
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{policy: policy, logger: logger, devMode: devMode}
}

// Authorize decides whether a normalized action may proceed.
// tok is the action's token identity; entryRole/entryFound describe the
// contract registry lookup for the resolved method+endpoint; role is the
// current user role ("" = anonymous, treated permissively).
func (g *Gate) Authorize(tok action.Token, endpoint string, entryRole RoleRequirement, entryFound bool, role Role) Decision {
	// Check 1: the canonical action's own role table. Applies whenever the
	// token maps to a canonical id, regardless of the endpoint lookup.
	if tok.Recognized && role != "" {
		if !IsActionAllowedForRole(tok.Canonical, role) {
			return denied("role " + role.String() + " not allowed for action " + tok.Canonical.String())
		}
	}

	// Check 2: the contract registry's role for the resolved endpoint.
	// Defense in depth against the two sources of truth drifting apart.
	if !entryFound {
		if g.policy == PolicyDeny {
			return denied("no contract entry for endpoint " + endpoint)
		}
		// Fail-open: unknown endpoints pass, with a dev-time warning only.
		if g.devMode {
			g.logger.Warn("no contract entry for endpoint, allowing (fail-open)",
				"endpoint", endpoint, "token", tok.Raw)
		}
		return allowed
	}
	if role != "" && !entryRole.Allows(role) {
		return denied("contract role " + string(entryRole) + " excludes " + role.String())
	}

	return allowed
}
