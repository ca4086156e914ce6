package action

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// tokenField is one candidate token-carrying field on a descriptor.
type tokenField struct {
	source Field
	value  func(*RawDescriptor) string
}

// tokenFields lists the token-carrying fields in strict precedence order.
// Literal (bare-string descriptor) outranks everything; among object fields
// key wins over action over type over item_type over operation.
var tokenFields = []tokenField{
	{FieldLiteral, func(d *RawDescriptor) string { return d.Literal }},
	{FieldKey, func(d *RawDescriptor) string { return d.Key }},
	{FieldAction, func(d *RawDescriptor) string { return d.Action }},
	{FieldType, func(d *RawDescriptor) string { return d.Type }},
	{FieldItemType, func(d *RawDescriptor) string { return d.ItemType }},
	{FieldOperation, func(d *RawDescriptor) string { return d.Operation }},
}

// Normalize flattens a descriptor into the single intermediate shape the
// rest of the pipeline consumes. The ordinal is the descriptor's position
// within its render group; it keeps UI keys unique when the backend sends
// duplicate descriptors. Returns nil when the descriptor carries no token at
// all — there is nothing to resolve.
func Normalize(d *RawDescriptor, ctx EntityContext, ordinal int) *NormalizedAction {
	raw, source, ok := firstToken(d)
	if !ok {
		return nil
	}

	tok := ResolveToken(raw, source)
	key := NormalizeToken(raw)
	if tok.Recognized {
		key = tok.Canonical.String()
	}

	ids := ResolveEntityIDs(d, ctx)

	n := &NormalizedAction{
		Token:            tok,
		Key:              key,
		UIKey:            uiKey(ctx.ScopeKey, key, tok.Raw, ids, ordinal),
		Label:            resolveLabel(d.Label, key),
		ExplicitEndpoint: firstNonEmpty(d.Endpoint, d.URL),
		Payload:          firstPayload(d.Payload, d.Body),
		Confirm:          ResolveConfirm(d),
		BinderID:         ids.BinderID,
		ChargeID:         ids.ChargeID,
		ClientID:         ids.ClientID,
	}

	if m := Method(strings.ToLower(strings.TrimSpace(d.Method))); m.IsValid() {
		n.Method = m
	}
	return n
}

// firstToken returns the highest-precedence non-empty token field.
func firstToken(d *RawDescriptor) (raw string, source Field, ok bool) {
	for _, f := range tokenFields {
		if v := strings.TrimSpace(f.value(d)); v != "" {
			return v, f.source, true
		}
	}
	return "", "", false
}

// uiKey builds a key that is stable across re-renders of the same response
// and unique within one scope. The hash covers the raw token, the resolved
// ids and the ordinal, so two otherwise identical descriptors in one group
// still get distinct keys.
func uiKey(scope, key, raw string, ids ResolvedIDs, ordinal int) string {
	if scope == "" {
		scope = "actions"
	}
	h := xxhash.New()
	_, _ = fmt.Fprintf(h, "%s|%d|%d|%d|%d", raw, ids.BinderID, ids.ChargeID, ids.ClientID, ordinal)
	return fmt.Sprintf("%s:%s:%016x", scope, key, h.Sum64())
}

// resolveLabel returns the descriptor label, or a label derived from the
// token key, or a generic placeholder. Never empty.
func resolveLabel(label, key string) string {
	if l := strings.TrimSpace(label); l != "" {
		return l
	}
	if key != "" {
		words := strings.Fields(strings.ReplaceAll(key, "_", " "))
		if len(words) > 0 {
			words[0] = strings.ToUpper(words[0][:1]) + words[0][1:]
			return strings.Join(words, " ")
		}
	}
	return "Action"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

func firstPayload(payloads ...map[string]any) map[string]any {
	for _, p := range payloads {
		if len(p) > 0 {
			return p
		}
	}
	return nil
}
