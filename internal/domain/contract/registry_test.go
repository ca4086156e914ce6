package contract

import (
	"testing"

	"github.com/matanmalka1/actiongate/internal/domain/action"
	"github.com/matanmalka1/actiongate/internal/domain/auth"
)

func TestRegistry_Match(t *testing.T) {
	r := NewRegistry(DefaultBasePrefix)

	tests := []struct {
		name    string
		method  action.Method
		path    string
		wantKey string
	}{
		{"receive", action.MethodPost, "/binders/receive", "binders.receive"},
		{"ready with prefix", action.MethodPost, "/api/v1/binders/13/ready", "binders.ready"},
		{"return", action.MethodPost, "/binders/8/return", "binders.return"},
		{"client update", action.MethodPatch, "/clients/3", "clients.update"},
		{"client get same path different method", action.MethodGet, "/clients/3", "clients.get"},
		{"mark paid", action.MethodPost, "/charges/21/mark-paid", "charges.mark_paid"},
		{"list with query", action.MethodGet, "/api/v1/clients?search=co", "clients.list"},
		{"login", action.MethodPost, "/auth/login", "auth.login"},
		{"upper-cased method", "POST", "/binders/receive", "binders.receive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := r.Match(tt.method, tt.path)
			if entry == nil {
				t.Fatalf("Match(%v, %q) = nil", tt.method, tt.path)
			}
			if entry.Key != tt.wantKey {
				t.Errorf("Match(%v, %q).Key = %q, want %q", tt.method, tt.path, entry.Key, tt.wantKey)
			}
		})
	}
}

func TestRegistry_MatchUnknown(t *testing.T) {
	r := NewRegistry(DefaultBasePrefix)
	tests := []struct {
		method action.Method
		path   string
	}{
		{action.MethodPost, "/binders/13/shred"},
		{action.MethodDelete, "/binders/13/ready"},
		{action.MethodGet, "/reports/export"},
	}
	for _, tt := range tests {
		if entry := r.Match(tt.method, tt.path); entry != nil {
			t.Errorf("Match(%v, %q) = %+v, want nil", tt.method, tt.path, entry)
		}
	}
}

func TestRegistry_Roles(t *testing.T) {
	r := NewRegistry(DefaultBasePrefix)

	// Charge money movement is advisor-only, binder logistics is not.
	chargeEntry := r.Match(action.MethodPost, "/charges/1/cancel")
	if chargeEntry == nil || chargeEntry.Role != auth.RequireAdvisor {
		t.Errorf("charges.cancel role = %+v, want advisor", chargeEntry)
	}
	binderEntry := r.Match(action.MethodPost, "/binders/1/ready")
	if binderEntry == nil || binderEntry.Role != auth.RequireAdvisorOrSecretary {
		t.Errorf("binders.ready role = %+v, want advisor_or_secretary", binderEntry)
	}
	loginEntry := r.Match(action.MethodPost, "/auth/login")
	if loginEntry == nil || loginEntry.Role != auth.RequirePublic {
		t.Errorf("auth.login role = %+v, want public", loginEntry)
	}
}

func TestRegistry_EntriesIsACopy(t *testing.T) {
	r := NewRegistry(DefaultBasePrefix)
	entries := r.Entries()
	if len(entries) == 0 {
		t.Fatal("empty registry")
	}
	entries[0].Key = "mutated"
	if r.Entries()[0].Key == "mutated" {
		t.Error("Entries must return a copy")
	}
}
