// Package contract holds the endpoint contract registry: the single source
// of truth for what the app is allowed to call and who may call it. The
// registry is static, loaded once at process start, and append-only.
package contract

import (
	"github.com/matanmalka1/actiongate/internal/domain/action"
	"github.com/matanmalka1/actiongate/internal/domain/auth"
)

// Entry describes one known backend endpoint.
type Entry struct {
	// Key names the endpoint for diagnostics and parity checks.
	Key string `json:"key" yaml:"key"`
	// Method is the HTTP method in lower-cased wire form.
	Method action.Method `json:"method" yaml:"method"`
	// Path is the path template, with {name} placeholders for dynamic
	// segments (e.g. "/binders/{binder_id}/ready").
	Path string `json:"path" yaml:"path"`
	// Role is the minimum role required to call the endpoint.
	Role auth.RoleRequirement `json:"role" yaml:"role"`
	// Query lists recognized query parameter names, when the endpoint
	// takes any. Informational; matching ignores the query string.
	Query []string `json:"query,omitempty" yaml:"query,omitempty"`
}
