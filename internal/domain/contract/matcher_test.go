package contract

import "testing"

func TestCompileTemplate(t *testing.T) {
	tests := []struct {
		name    string
		tmpl    string
		path    string
		matches bool
	}{
		{"static match", "/binders/receive", "/binders/receive", true},
		{"static mismatch", "/binders/receive", "/binders/receive/extra", false},
		{"placeholder match", "/binders/{binder_id}/ready", "/binders/42/ready", true},
		{"placeholder is one segment", "/binders/{binder_id}/ready", "/binders/4/2/ready", false},
		{"placeholder not empty", "/binders/{binder_id}/ready", "/binders//ready", false},
		{"trailing placeholder", "/clients/{client_id}", "/clients/7", true},
		{"trailing placeholder no suffix", "/clients/{client_id}", "/clients/7/timeline", false},
		{"prefix is not a match", "/clients/{client_id}", "/x/clients/7", false},
		{"non-numeric segment still matches", "/clients/{client_id}", "/clients/abc", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			re, err := CompileTemplate(tt.tmpl)
			if err != nil {
				t.Fatalf("CompileTemplate(%q): %v", tt.tmpl, err)
			}
			if got := re.MatchString(tt.path); got != tt.matches {
				t.Errorf("match(%q, %q) = %v, want %v", tt.tmpl, tt.path, got, tt.matches)
			}
		})
	}
}

// Literal template text must be escaped: a dot in a template segment may not
// act as a regex wildcard against runtime paths.
func TestCompileTemplate_EscapesMetacharacters(t *testing.T) {
	re, err := CompileTemplate("/reports/v1.2/export")
	if err != nil {
		t.Fatal(err)
	}
	if !re.MatchString("/reports/v1.2/export") {
		t.Error("literal dot must match itself")
	}
	if re.MatchString("/reports/v1x2/export") {
		t.Error("dot must not match arbitrary characters")
	}
}

func TestCompileTemplate_Invalid(t *testing.T) {
	for _, tmpl := range []string{"", "binders/receive"} {
		if _, err := CompileTemplate(tmpl); err == nil {
			t.Errorf("CompileTemplate(%q) = nil error, want error", tmpl)
		}
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path   string
		prefix string
		want   string
	}{
		{"/api/v1/binders/3/ready", "/api/v1", "/binders/3/ready"},
		{"/binders/3/ready", "/api/v1", "/binders/3/ready"},
		{"/api/v1/clients?page=2", "/api/v1", "/clients"},
		{"/api/v1/clients#top", "/api/v1", "/clients"},
		{"/api/v1", "/api/v1", "/"},
		{"clients", "", "/clients"},
	}
	for _, tt := range tests {
		if got := NormalizePath(tt.path, tt.prefix); got != tt.want {
			t.Errorf("NormalizePath(%q, %q) = %q, want %q", tt.path, tt.prefix, got, tt.want)
		}
	}
}
