package action

import (
	"encoding/json"
	"testing"
)

// Token precedence: key strictly wins over action, type, item_type and
// operation, regardless of what the other fields say.
func TestNormalize_TokenFieldPrecedence(t *testing.T) {
	d := &RawDescriptor{
		Key:       "ready",
		Action:    "return",
		Type:      "freeze",
		ItemType:  "issue_charge",
		Operation: "cancel_charge",
	}
	n := Normalize(d, EntityContext{EntityPath: "/binders", EntityID: 13}, 0)
	if n == nil {
		t.Fatal("Normalize returned nil")
	}
	if n.Token.Canonical != CanonicalReady {
		t.Errorf("Canonical = %v, want %v", n.Token.Canonical, CanonicalReady)
	}
	if n.Token.Source != FieldKey {
		t.Errorf("Source = %v, want %v", n.Token.Source, FieldKey)
	}
}

func TestNormalize_FieldPrecedenceOrder(t *testing.T) {
	tests := []struct {
		name       string
		descriptor RawDescriptor
		wantRaw    string
		wantSource Field
	}{
		{"action beats type", RawDescriptor{Action: "return", Type: "freeze"}, "return", FieldAction},
		{"type beats item_type", RawDescriptor{Type: "freeze", ItemType: "ready"}, "freeze", FieldType},
		{"item_type beats operation", RawDescriptor{ItemType: "ready", Operation: "return"}, "ready", FieldItemType},
		{"operation stands alone", RawDescriptor{Operation: "return"}, "return", FieldOperation},
		{"literal beats everything", RawDescriptor{Literal: "ready", Key: "return"}, "ready", FieldLiteral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := Normalize(&tt.descriptor, EntityContext{}, 0)
			if n == nil {
				t.Fatal("Normalize returned nil")
			}
			if n.Token.Raw != tt.wantRaw || n.Token.Source != tt.wantSource {
				t.Errorf("token = (%q, %v), want (%q, %v)", n.Token.Raw, n.Token.Source, tt.wantRaw, tt.wantSource)
			}
		})
	}
}

func TestNormalize_EmptyDescriptor(t *testing.T) {
	if n := Normalize(&RawDescriptor{Label: "no token here"}, EntityContext{}, 0); n != nil {
		t.Errorf("Normalize of tokenless descriptor = %+v, want nil", n)
	}
}

func TestNormalize_LabelFallback(t *testing.T) {
	tests := []struct {
		name       string
		descriptor RawDescriptor
		want       string
	}{
		{"explicit label wins", RawDescriptor{Key: "ready", Label: "Mark ready for pickup"}, "Mark ready for pickup"},
		{"derived from canonical", RawDescriptor{Key: "mark_paid"}, "Mark paid"},
		{"derived from raw token", RawDescriptor{Key: "custom_export"}, "Custom export"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := Normalize(&tt.descriptor, EntityContext{}, 0)
			if n == nil {
				t.Fatal("Normalize returned nil")
			}
			if n.Label != tt.want {
				t.Errorf("Label = %q, want %q", n.Label, tt.want)
			}
		})
	}
}

func TestNormalize_EndpointAndPayloadAlternatives(t *testing.T) {
	d := &RawDescriptor{
		Key:  "custom",
		URL:  "/reports/export",
		Body: map[string]any{"format": "xlsx"},
	}
	n := Normalize(d, EntityContext{}, 0)
	if n == nil {
		t.Fatal("Normalize returned nil")
	}
	if n.ExplicitEndpoint != "/reports/export" {
		t.Errorf("ExplicitEndpoint = %q, want url field value", n.ExplicitEndpoint)
	}
	if n.Payload["format"] != "xlsx" {
		t.Errorf("Payload = %v, want body field value", n.Payload)
	}

	// endpoint beats url, payload beats body
	d2 := &RawDescriptor{
		Key:      "custom",
		Endpoint: "/a",
		URL:      "/b",
		Payload:  map[string]any{"p": 1},
		Body:     map[string]any{"b": 2},
	}
	n2 := Normalize(d2, EntityContext{}, 0)
	if n2.ExplicitEndpoint != "/a" {
		t.Errorf("ExplicitEndpoint = %q, want /a", n2.ExplicitEndpoint)
	}
	if _, ok := n2.Payload["p"]; !ok {
		t.Errorf("Payload = %v, want payload field to win", n2.Payload)
	}
}

func TestNormalize_InvalidMethodIgnored(t *testing.T) {
	n := Normalize(&RawDescriptor{Key: "custom", Method: "TRACE"}, EntityContext{}, 0)
	if n.Method != "" {
		t.Errorf("Method = %q, want empty for invalid method", n.Method)
	}
	n2 := Normalize(&RawDescriptor{Key: "custom", Method: "PATCH"}, EntityContext{}, 0)
	if n2.Method != MethodPatch {
		t.Errorf("Method = %q, want %q", n2.Method, MethodPatch)
	}
}

func TestNormalize_UIKeys(t *testing.T) {
	ctx := EntityContext{ScopeKey: "binders-table", EntityPath: "/binders", EntityID: 4}
	d1 := &RawDescriptor{Key: "ready"}
	d2 := &RawDescriptor{Key: "ready"}

	a := Normalize(d1, ctx, 0)
	b := Normalize(d2, ctx, 1)
	if a.UIKey == b.UIKey {
		t.Errorf("duplicate descriptors in one scope share UIKey %q", a.UIKey)
	}

	// Stable across re-renders: same descriptor, same ordinal, same key.
	again := Normalize(d1, ctx, 0)
	if a.UIKey != again.UIKey {
		t.Errorf("UIKey not stable across re-renders: %q vs %q", a.UIKey, again.UIKey)
	}

	// Different scopes never collide on the scope prefix.
	other := Normalize(d1, EntityContext{ScopeKey: "quick-actions", EntityID: 4}, 0)
	if a.UIKey == other.UIKey {
		t.Errorf("UIKey identical across scopes: %q", a.UIKey)
	}
}

func TestRawDescriptor_UnmarshalJSON(t *testing.T) {
	var list []RawDescriptor
	data := `["ready", {"key": "mark_paid", "charge_id": 5, "confirm_required": true}]`
	if err := json.Unmarshal([]byte(data), &list); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
	if list[0].Literal != "ready" {
		t.Errorf("Literal = %q, want ready", list[0].Literal)
	}
	if list[1].Key != "mark_paid" || list[1].ChargeID != 5 || !list[1].ConfirmRequired {
		t.Errorf("object form decoded wrong: %+v", list[1])
	}
}
