// Package action defines the action type system: the loosely-shaped
// descriptors the backend attaches to entity records, the canonical
// operation identities they resolve to, and the executable Command the
// resolution pipeline produces.
//
// Every descriptor — bare string or structured object — is normalized into a
// NormalizedAction, resolved against the canonical catalog, authorized, and
// either materialized into a Command or dropped.
package action

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// CanonicalID identifies one of the closed set of recognized business
// operations. Everything else is an unrecognized token, resolvable only
// through an explicit endpoint on the descriptor.
type CanonicalID string

const (
	// CanonicalReceive registers a new binder dropped off by a client.
	CanonicalReceive CanonicalID = "receive"
	// CanonicalReady marks a binder ready for pickup.
	CanonicalReady CanonicalID = "ready"
	// CanonicalReturn marks a binder returned to the client.
	CanonicalReturn CanonicalID = "return"
	// CanonicalFreeze suspends a client account.
	CanonicalFreeze CanonicalID = "freeze"
	// CanonicalActivate reactivates a frozen client account.
	CanonicalActivate CanonicalID = "activate"
	// CanonicalMarkPaid marks a charge as paid.
	CanonicalMarkPaid CanonicalID = "mark_paid"
	// CanonicalIssueCharge issues a drafted charge to the client.
	CanonicalIssueCharge CanonicalID = "issue_charge"
	// CanonicalCancelCharge voids a charge.
	CanonicalCancelCharge CanonicalID = "cancel_charge"
)

// String returns the string representation of the CanonicalID.
func (c CanonicalID) String() string {
	return string(c)
}

// IsValid returns true if the id is a member of the canonical set.
func (c CanonicalID) IsValid() bool {
	switch c {
	case CanonicalReceive, CanonicalReady, CanonicalReturn,
		CanonicalFreeze, CanonicalActivate,
		CanonicalMarkPaid, CanonicalIssueCharge, CanonicalCancelCharge:
		return true
	default:
		return false
	}
}

// CanonicalIDs returns every member of the canonical set, in a fixed order.
func CanonicalIDs() []CanonicalID {
	return []CanonicalID{
		CanonicalReceive, CanonicalReady, CanonicalReturn,
		CanonicalFreeze, CanonicalActivate,
		CanonicalMarkPaid, CanonicalIssueCharge, CanonicalCancelCharge,
	}
}

// Field names the descriptor field a raw token was read from.
// Recorded for diagnostics only; it never influences resolution beyond the
// fixed precedence order.
type Field string

const (
	// FieldKey is the highest-precedence token field.
	FieldKey Field = "key"
	// FieldAction is the second token field.
	FieldAction Field = "action"
	// FieldType is the third token field.
	FieldType Field = "type"
	// FieldItemType is the fourth token field.
	FieldItemType Field = "item_type"
	// FieldOperation is the lowest-precedence token field.
	FieldOperation Field = "operation"
	// FieldLiteral marks a descriptor that was a bare string.
	FieldLiteral Field = "literal"
)

// Token is the tagged result of resolving a raw token string.
// Recognized tokens carry a canonical id; unrecognized ones carry only the
// raw string and fall through to the explicit-endpoint path.
type Token struct {
	// Raw is the token exactly as the descriptor carried it.
	Raw string
	// Source is the descriptor field the token was read from.
	Source Field
	// Canonical is the canonical id, valid only when Recognized is true.
	Canonical CanonicalID
	// Recognized is true when Raw mapped to a canonical id.
	Recognized bool
}

// Method is an HTTP method in the lower-cased wire form the backend uses.
type Method string

const (
	MethodGet    Method = "get"
	MethodPost   Method = "post"
	MethodPatch  Method = "patch"
	MethodPut    Method = "put"
	MethodDelete Method = "delete"
)

// IsValid returns true for the methods the descriptor wire format admits.
func (m Method) IsValid() bool {
	switch m {
	case MethodGet, MethodPost, MethodPatch, MethodPut, MethodDelete:
		return true
	default:
		return false
	}
}

// String returns the string representation of the Method.
func (m Method) String() string {
	return string(m)
}

// RawDescriptor is the wire shape of a backend-supplied action descriptor.
// It decodes from either a bare JSON string or an object with any subset of
// the fields below. Descriptors are owned by the API response that carried
// them and are never mutated.
type RawDescriptor struct {
	// Literal holds the token when the descriptor was a bare string.
	Literal string `json:"-"`

	// Token-carrying fields, in precedence order.
	Key       string `json:"key,omitempty"`
	Action    string `json:"action,omitempty"`
	Type      string `json:"type,omitempty"`
	ItemType  string `json:"item_type,omitempty"`
	Operation string `json:"operation,omitempty"`

	// Label is the display label; when empty a generic one is derived.
	Label string `json:"label,omitempty"`

	// Endpoint and URL are alternative explicit-endpoint fields.
	Endpoint string `json:"endpoint,omitempty"`
	URL      string `json:"url,omitempty"`

	// Method is the lower-cased HTTP method, when supplied.
	Method string `json:"method,omitempty"`

	// Payload and Body are alternative request-payload fields.
	Payload map[string]any `json:"payload,omitempty"`
	Body    map[string]any `json:"body,omitempty"`

	// Embedded entity identifiers. Zero means absent.
	BinderID int64 `json:"binder_id,omitempty"`
	ChargeID int64 `json:"charge_id,omitempty"`
	ClientID int64 `json:"client_id,omitempty"`

	// Confirmation fields.
	ConfirmRequired bool   `json:"confirm_required,omitempty"`
	ConfirmTitle    string `json:"confirm_title,omitempty"`
	ConfirmMessage  string `json:"confirm_message,omitempty"`
	ConfirmLabel    string `json:"confirm_label,omitempty"`
	CancelLabel     string `json:"cancel_label,omitempty"`
}

// rawDescriptorAlias avoids UnmarshalJSON recursion on the object form.
type rawDescriptorAlias RawDescriptor

// UnmarshalJSON accepts either a bare string token or the structured object
// form. A bare string is stored in Literal.
func (d *RawDescriptor) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("decode descriptor string: %w", err)
		}
		*d = RawDescriptor{Literal: s}
		return nil
	}
	var obj rawDescriptorAlias
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return fmt.Errorf("decode descriptor object: %w", err)
	}
	*d = RawDescriptor(obj)
	return nil
}

// EntityContext describes the surroundings a descriptor was rendered in:
// which list/page it came from, the id of the row it belongs to, and any
// explicitly supplied entity ids. Supplied by the caller per render.
type EntityContext struct {
	// EntityPath is the list/page path the action came from (e.g. "/binders").
	EntityPath string
	// EntityID is the id of the row/record the action belongs to.
	EntityID int64
	// BinderID, ChargeID and ClientID are explicitly supplied context ids.
	BinderID int64
	ChargeID int64
	ClientID int64
	// ScopeKey disambiguates UI keys across simultaneously rendered groups.
	ScopeKey string
}

// Confirm is a fully-populated confirmation prompt. All four strings are
// guaranteed non-empty so the UI never renders blank text.
type Confirm struct {
	Title        string `json:"title" yaml:"title"`
	Message      string `json:"message" yaml:"message"`
	ConfirmLabel string `json:"confirm_label" yaml:"confirm_label"`
	CancelLabel  string `json:"cancel_label" yaml:"cancel_label"`
}

// NormalizedAction is the single intermediate shape every descriptor is
// flattened into. Derived once per descriptor and discarded after
// materialization.
type NormalizedAction struct {
	// Token is the resolved token identity.
	Token Token
	// Key is the canonical id for recognized tokens, otherwise the
	// lower-cased raw token.
	Key string
	// UIKey is stable across re-renders and unique within one scope.
	UIKey string
	// Label is the display label, never empty.
	Label string
	// ExplicitEndpoint is the descriptor-supplied endpoint, if any.
	ExplicitEndpoint string
	// Method is the descriptor-supplied method, if any.
	Method Method
	// Payload is the descriptor-supplied payload. Shared with the
	// descriptor; the catalog copies before merging.
	Payload map[string]any
	// Confirm is the resolved confirmation prompt, nil when not required.
	Confirm *Confirm
	// Resolved entity ids, per-kind precedence already applied.
	BinderID int64
	ChargeID int64
	ClientID int64
}

// CanonicalResolution is the catalog's output for a recognized token:
// a concrete method/endpoint/payload plus the primary entity id the
// operation targets. Produced only when every required id is a positive
// integer.
type CanonicalResolution struct {
	Canonical CanonicalID
	Method    Method
	Endpoint  string
	Payload   map[string]any
	// EntityID is the primary id the endpoint is parameterized by
	// (0 for receive, which has none).
	EntityID int64
}

// Command is the final executable artifact: everything needed to issue
// exactly one HTTP request. Immutable once produced.
type Command struct {
	// Key is the canonical id or the lower-cased unrecognized token.
	Key string `json:"key" yaml:"key"`
	// UIKey is unique within one render of one scope.
	UIKey string `json:"ui_key" yaml:"ui_key"`
	// ID is the primary entity id the command targets (0 when none).
	ID int64 `json:"id" yaml:"id"`
	// Label is the display label, never empty.
	Label string `json:"label" yaml:"label"`
	// Method and Endpoint describe the request to issue.
	Method   Method `json:"method" yaml:"method"`
	Endpoint string `json:"endpoint" yaml:"endpoint"`
	// Payload is the request body, nil when the request has none.
	Payload map[string]any `json:"payload,omitempty" yaml:"payload,omitempty"`
	// Confirm is present only when user confirmation is required.
	Confirm *Confirm `json:"confirm,omitempty" yaml:"confirm,omitempty"`
}
