package action

import "strings"

// tokenAliases maps lower-cased raw tokens to canonical ids. The backend has
// grown several spellings for the same operation across screens; all of them
// land here. Append-only.
var tokenAliases = map[string]CanonicalID{
	// receive
	"receive":        CanonicalReceive,
	"receive_binder": CanonicalReceive,
	"binder_receive": CanonicalReceive,
	"new_binder":     CanonicalReceive,

	// ready
	"ready":        CanonicalReady,
	"ready_binder": CanonicalReady,
	"binder_ready": CanonicalReady,
	"mark_ready":   CanonicalReady,

	// return
	"return":        CanonicalReturn,
	"return_binder": CanonicalReturn,
	"binder_return": CanonicalReturn,
	"pickup":        CanonicalReturn,

	// freeze
	"freeze":        CanonicalFreeze,
	"freeze_client": CanonicalFreeze,
	"client_freeze": CanonicalFreeze,
	"suspend":       CanonicalFreeze,

	// activate
	"activate":        CanonicalActivate,
	"activate_client": CanonicalActivate,
	"unfreeze":        CanonicalActivate,
	"resume":          CanonicalActivate,

	// mark_paid
	"mark_paid":        CanonicalMarkPaid,
	"pay_charge":       CanonicalMarkPaid,
	"mark_charge_paid": CanonicalMarkPaid,
	"paid":             CanonicalMarkPaid,

	// issue_charge
	"issue_charge": CanonicalIssueCharge,
	"charge_issue": CanonicalIssueCharge,
	"issue":        CanonicalIssueCharge,

	// cancel_charge
	"cancel_charge": CanonicalCancelCharge,
	"charge_cancel": CanonicalCancelCharge,
	"void_charge":   CanonicalCancelCharge,
}

// NormalizeToken lower-cases and trims a raw token string.
func NormalizeToken(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// ResolveToken resolves a raw token string against the alias table.
// Unrecognized tokens are not an error; the returned Token carries the raw
// string with Recognized=false and resolution falls through to the
// explicit-endpoint path.
func ResolveToken(raw string, source Field) Token {
	tok := Token{Raw: raw, Source: source}
	if id, ok := tokenAliases[NormalizeToken(raw)]; ok {
		tok.Canonical = id
		tok.Recognized = true
	}
	return tok
}
