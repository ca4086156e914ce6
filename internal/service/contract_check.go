package service

import (
	"errors"
	"fmt"

	"github.com/matanmalka1/actiongate/internal/domain/action"
	"github.com/matanmalka1/actiongate/internal/domain/auth"
	"github.com/matanmalka1/actiongate/internal/domain/contract"
)

// representativeIDs gives every canonical action the ids it needs so the
// catalog produces a concrete endpoint for the parity check.
var representativeIDs = action.ResolvedIDs{BinderID: 1, ChargeID: 1, ClientID: 1}

// representativeReceivePayload satisfies the receive catalog rule.
var representativeReceivePayload = map[string]any{
	"client_id":     int64(1),
	"binder_number": "2026-001",
}

// VerifyContracts cross-checks the canonical catalog against the contract
// registry: every canonical action, resolved with a representative context,
// must match exactly one registry entry by method+path, and an entry that
// declares the advisor role must correspond to an advisor-only action (and
// the other way around must not contradict). Returns all violations joined.
func VerifyContracts(registry *contract.Registry) error {
	var errs []error
	for _, id := range action.CanonicalIDs() {
		tok := action.Token{Raw: id.String(), Source: action.FieldKey, Canonical: id, Recognized: true}

		payload := map[string]any(nil)
		if id == action.CanonicalReceive {
			payload = representativeReceivePayload
		}
		res, ok := action.ResolveCanonical(tok, representativeIDs, payload)
		if !ok {
			errs = append(errs, fmt.Errorf("canonical action %s did not resolve with a representative context", id))
			continue
		}

		entry := registry.Match(res.Method, res.Endpoint)
		if entry == nil {
			errs = append(errs, fmt.Errorf("canonical action %s resolves to %s %s, which has no contract entry",
				id, res.Method, res.Endpoint))
			continue
		}

		actionRole := auth.RequirementFor(id)
		if entry.Role == auth.RequireAdvisor && actionRole != auth.RequireAdvisor {
			errs = append(errs, fmt.Errorf("contract entry %s is advisor-only but action %s requires %s",
				entry.Key, id, actionRole))
		}
		if actionRole == auth.RequireAdvisor && entry.Role != auth.RequireAdvisor {
			errs = append(errs, fmt.Errorf("action %s is advisor-only but contract entry %s requires %s",
				id, entry.Key, entry.Role))
		}
	}
	return errors.Join(errs...)
}
