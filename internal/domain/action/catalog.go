package action

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Catalog endpoints, relative to the API base prefix. These must stay in
// lockstep with the contract registry; the parity check in the service layer
// asserts it.
const (
	endpointReceive = "/binders/receive"

	endpointReadyFmt  = "/binders/%d/ready"
	endpointReturnFmt = "/binders/%d/return"

	endpointMarkPaidFmt = "/charges/%d/mark-paid"
	endpointIssueFmt    = "/charges/%d/issue"
	endpointCancelFmt   = "/charges/%d/cancel"

	endpointClientFmt = "/clients/%d"
)

// Client status values written by freeze/activate. The status always
// overrides any caller-supplied value in the payload.
const (
	statusFrozen = "frozen"
	statusActive = "active"
)

// ResolveCanonical applies the fixed per-canonical-action rule: which inputs
// are required and what method/endpoint/payload result. A missing or invalid
// requirement resolves to (nil, false) — the action is simply not available
// for this record right now, which is a normal outcome, not an error.
// Unrecognized tokens always resolve to (nil, false); they are handled by
// the explicit-endpoint fallback.
func ResolveCanonical(tok Token, ids ResolvedIDs, payload map[string]any) (*CanonicalResolution, bool) {
	if !tok.Recognized {
		return nil, false
	}

	switch tok.Canonical {
	case CanonicalReceive:
		if !validReceivePayload(payload) {
			return nil, false
		}
		return &CanonicalResolution{
			Canonical: tok.Canonical,
			Method:    MethodPost,
			Endpoint:  endpointReceive,
			Payload:   payload,
		}, true

	case CanonicalReady:
		return binderResolution(tok.Canonical, endpointReadyFmt, ids.BinderID)
	case CanonicalReturn:
		return binderResolution(tok.Canonical, endpointReturnFmt, ids.BinderID)

	case CanonicalMarkPaid:
		return chargeResolution(tok.Canonical, endpointMarkPaidFmt, ids.ChargeID)
	case CanonicalIssueCharge:
		return chargeResolution(tok.Canonical, endpointIssueFmt, ids.ChargeID)
	case CanonicalCancelCharge:
		return chargeResolution(tok.Canonical, endpointCancelFmt, ids.ChargeID)

	case CanonicalFreeze:
		return clientStatusResolution(tok.Canonical, ids.ClientID, payload, statusFrozen)
	case CanonicalActivate:
		return clientStatusResolution(tok.Canonical, ids.ClientID, payload, statusActive)

	default:
		return nil, false
	}
}

func binderResolution(id CanonicalID, format string, binderID int64) (*CanonicalResolution, bool) {
	if binderID <= 0 {
		return nil, false
	}
	return &CanonicalResolution{
		Canonical: id,
		Method:    MethodPost,
		Endpoint:  fmt.Sprintf(format, binderID),
		EntityID:  binderID,
	}, true
}

func chargeResolution(id CanonicalID, format string, chargeID int64) (*CanonicalResolution, bool) {
	if chargeID <= 0 {
		return nil, false
	}
	return &CanonicalResolution{
		Canonical: id,
		Method:    MethodPost,
		Endpoint:  fmt.Sprintf(format, chargeID),
		EntityID:  chargeID,
	}, true
}

// clientStatusResolution builds the PATCH for freeze/activate. The
// descriptor payload is copied, never mutated; the status key always wins.
func clientStatusResolution(id CanonicalID, clientID int64, payload map[string]any, status string) (*CanonicalResolution, bool) {
	if clientID <= 0 {
		return nil, false
	}
	merged := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		merged[k] = v
	}
	merged["status"] = status
	return &CanonicalResolution{
		Canonical: id,
		Method:    MethodPatch,
		Endpoint:  fmt.Sprintf(endpointClientFmt, clientID),
		Payload:   merged,
		EntityID:  clientID,
	}, true
}

// validReceivePayload checks the receive action's caller-constructed payload:
// a positive integer client_id and a non-empty binder_number.
func validReceivePayload(payload map[string]any) bool {
	clientID, ok := PayloadInt(payload, "client_id")
	if !ok || clientID <= 0 {
		return false
	}
	number, ok := payload["binder_number"].(string)
	return ok && strings.TrimSpace(number) != ""
}

// PayloadInt reads an integer out of a decoded JSON payload. JSON numbers
// arrive as float64 (or json.Number with a configured decoder); both are
// accepted as long as the value is integral.
func PayloadInt(payload map[string]any, key string) (int64, bool) {
	v, ok := payload[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if n != float64(int64(n)) {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}
