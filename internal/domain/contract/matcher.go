package contract

import (
	"fmt"
	"regexp"
	"strings"
)

// placeholderPattern matches one {name} template placeholder. Placeholders
// may not span path segments.
var placeholderPattern = regexp.MustCompile(`\{[^/{}]+\}`)

// CompileTemplate converts a path template into an anchored matcher.
// Every literal part of the template is regex-escaped (templates are static
// and trusted, but escaping keeps metacharacters in literals from widening
// the match), and each {name} placeholder becomes a single-segment [^/]+
// capture. The runtime path is matched as a plain string, never compiled.
func CompileTemplate(tmpl string) (*regexp.Regexp, error) {
	if tmpl == "" || !strings.HasPrefix(tmpl, "/") {
		return nil, fmt.Errorf("path template must start with '/': %q", tmpl)
	}

	var b strings.Builder
	b.WriteString("^")
	last := 0
	for _, loc := range placeholderPattern.FindAllStringIndex(tmpl, -1) {
		b.WriteString(regexp.QuoteMeta(tmpl[last:loc[0]]))
		b.WriteString("([^/]+)")
		last = loc[1]
	}
	b.WriteString(regexp.QuoteMeta(tmpl[last:]))
	b.WriteString("$")

	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, fmt.Errorf("compile path template %q: %w", tmpl, err)
	}
	return re, nil
}

// mustCompileTemplate is for the static built-in registry, where a bad
// template is a programming error.
func mustCompileTemplate(tmpl string) *regexp.Regexp {
	re, err := CompileTemplate(tmpl)
	if err != nil {
		panic(err)
	}
	return re
}

// NormalizePath strips the API base prefix and any query string or fragment
// from a runtime path, leaving the registry-relative path.
func NormalizePath(path, basePrefix string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if basePrefix != "" && strings.HasPrefix(path, basePrefix) {
		path = path[len(basePrefix):]
	}
	if path == "" {
		path = "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}
