package contract

import (
	"regexp"
	"strings"

	"github.com/matanmalka1/actiongate/internal/domain/action"
	"github.com/matanmalka1/actiongate/internal/domain/auth"
)

// DefaultBasePrefix is the API base prefix the backend mounts everything
// under. Stripped before template matching.
const DefaultBasePrefix = "/api/v1"

// defaultEntries is the full backend surface. Flat and append-only; the
// order matters only in that the first matching entry wins.
var defaultEntries = []Entry{
	// Auth/session. Public: must be reachable before a role is known.
	{Key: "auth.login", Method: action.MethodPost, Path: "/auth/login", Role: auth.RequirePublic},
	{Key: "auth.logout", Method: action.MethodPost, Path: "/auth/logout", Role: auth.RequirePublic},
	{Key: "auth.me", Method: action.MethodGet, Path: "/auth/me", Role: auth.RequirePublic},

	// Binder logistics.
	{Key: "binders.list", Method: action.MethodGet, Path: "/binders", Role: auth.RequireAdvisorOrSecretary, Query: []string{"status", "client_id", "page"}},
	{Key: "binders.get", Method: action.MethodGet, Path: "/binders/{binder_id}", Role: auth.RequireAdvisorOrSecretary},
	{Key: "binders.receive", Method: action.MethodPost, Path: "/binders/receive", Role: auth.RequireAdvisorOrSecretary},
	{Key: "binders.ready", Method: action.MethodPost, Path: "/binders/{binder_id}/ready", Role: auth.RequireAdvisorOrSecretary},
	{Key: "binders.return", Method: action.MethodPost, Path: "/binders/{binder_id}/return", Role: auth.RequireAdvisorOrSecretary},

	// Clients.
	{Key: "clients.list", Method: action.MethodGet, Path: "/clients", Role: auth.RequireAdvisorOrSecretary, Query: []string{"search", "status", "page"}},
	{Key: "clients.get", Method: action.MethodGet, Path: "/clients/{client_id}", Role: auth.RequireAdvisorOrSecretary},
	{Key: "clients.update", Method: action.MethodPatch, Path: "/clients/{client_id}", Role: auth.RequireAdvisorOrSecretary},
	{Key: "clients.timeline", Method: action.MethodGet, Path: "/clients/{client_id}/timeline", Role: auth.RequireAdvisorOrSecretary},

	// Charges. Money movement is advisor-only.
	{Key: "charges.list", Method: action.MethodGet, Path: "/charges", Role: auth.RequireAdvisor, Query: []string{"status", "client_id", "page"}},
	{Key: "charges.get", Method: action.MethodGet, Path: "/charges/{charge_id}", Role: auth.RequireAdvisor},
	{Key: "charges.mark_paid", Method: action.MethodPost, Path: "/charges/{charge_id}/mark-paid", Role: auth.RequireAdvisor},
	{Key: "charges.issue", Method: action.MethodPost, Path: "/charges/{charge_id}/issue", Role: auth.RequireAdvisor},
	{Key: "charges.cancel", Method: action.MethodPost, Path: "/charges/{charge_id}/cancel", Role: auth.RequireAdvisor},

	// VAT work items.
	{Key: "vat.work_items", Method: action.MethodGet, Path: "/vat/work-items", Role: auth.RequireAdvisorOrSecretary, Query: []string{"period", "status"}},
	{Key: "vat.complete", Method: action.MethodPost, Path: "/vat/work-items/{item_id}/complete", Role: auth.RequireAdvisor},

	// Dashboard.
	{Key: "dashboard.widgets", Method: action.MethodGet, Path: "/dashboard/widgets", Role: auth.RequireAdvisor},
}

// Registry matches runtime (method, path) pairs against the endpoint
// contract table. Immutable after construction; safe for concurrent use.
type Registry struct {
	basePrefix string
	entries    []Entry
	matchers   []*regexp.Regexp
}

// NewRegistry builds the registry over the built-in contract table.
func NewRegistry(basePrefix string) *Registry {
	return newRegistry(basePrefix, defaultEntries)
}

// NewRegistryWithEntries builds a registry over a caller-supplied contract
// table. Panics on a malformed path template, matching NewRegistry.
func NewRegistryWithEntries(basePrefix string, entries []Entry) *Registry {
	return newRegistry(basePrefix, entries)
}

func newRegistry(basePrefix string, entries []Entry) *Registry {
	r := &Registry{
		basePrefix: basePrefix,
		entries:    entries,
		matchers:   make([]*regexp.Regexp, len(entries)),
	}
	for i, e := range entries {
		r.matchers[i] = mustCompileTemplate(e.Path)
	}
	return r
}

// Match returns the first entry whose method and path template match the
// runtime path (base prefix and query string stripped), or nil when the
// endpoint is unknown. A nil result is not an error; the gate decides what
// it means under the configured unknown-endpoint policy.
func (r *Registry) Match(method action.Method, path string) *Entry {
	m := action.Method(strings.ToLower(string(method)))
	p := NormalizePath(path, r.basePrefix)
	for i, e := range r.entries {
		if e.Method != m {
			continue
		}
		if r.matchers[i].MatchString(p) {
			entry := r.entries[i]
			return &entry
		}
	}
	return nil
}

// Entries returns a copy of the contract table.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// BasePrefix returns the API base prefix the registry strips before matching.
func (r *Registry) BasePrefix() string {
	return r.basePrefix
}
