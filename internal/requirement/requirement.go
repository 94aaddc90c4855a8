package requirement

import (
	"fmt"
	"regexp"
	"strings"
)

// Requirement is one parsed requirement string.
type Requirement struct {
	Name      string
	Extras    []string
	Specifier string // comma-separated clauses in declared order, e.g. ">=7.0.6,<8.0.0"
	URL       string // set for direct references ("name @ url")
	Marker    *Marker
}

var (
	nameRegex      = regexp.MustCompile(`^([A-Za-z0-9][-A-Za-z0-9._]*[A-Za-z0-9]|[A-Za-z0-9])\s*(\[[^\]]*\])?`)
	specifierRegex = regexp.MustCompile(`^(===|~=|==|!=|<=|>=|<|>)\s*[A-Za-z0-9.*+!_-]+$`)
)

// Parse parses a PEP 508 requirement string.
func Parse(s string) (*Requirement, error) {
	body, markerText := splitMarker(s)

	match := nameRegex.FindStringSubmatch(body)
	if match == nil {
		return nil, fmt.Errorf("invalid requirement %q: missing distribution name", s)
	}

	r := &Requirement{Name: match[1]}
	if match[2] != "" {
		for _, extra := range strings.Split(strings.Trim(match[2], "[]"), ",") {
			if extra = strings.TrimSpace(extra); extra != "" {
				r.Extras = append(r.Extras, extra)
			}
		}
	}

	rest := strings.TrimSpace(body[len(match[0]):])
	switch {
	case strings.HasPrefix(rest, "@"):
		r.URL = strings.TrimSpace(strings.TrimPrefix(rest, "@"))
		if r.URL == "" {
			return nil, fmt.Errorf("invalid requirement %q: empty URL", s)
		}
	case rest != "":
		spec, err := parseSpecifier(rest)
		if err != nil {
			return nil, fmt.Errorf("invalid requirement %q: %w", s, err)
		}
		r.Specifier = spec
	}

	if markerText != "" {
		m, err := ParseMarker(markerText)
		if err != nil {
			return nil, fmt.Errorf("invalid requirement %q: %w", s, err)
		}
		r.Marker = m
	}

	return r, nil
}

// String renders the requirement without its marker, in the form pip accepts
// on the command line: "pydash>=7.0.6,<8.0.0", "rich[jupyter]", "pkg @ url".
func (r *Requirement) String() string {
	var b strings.Builder
	b.WriteString(r.Name)
	if len(r.Extras) > 0 {
		b.WriteString("[" + strings.Join(r.Extras, ",") + "]")
	}
	if r.URL != "" {
		b.WriteString(" @ " + r.URL)
		return b.String()
	}
	b.WriteString(r.Specifier)
	return b.String()
}

// Satisfied reports whether the requirement applies in env. Requirements
// without a marker always apply.
func (r *Requirement) Satisfied(env Environment) bool {
	if r.Marker == nil {
		return true
	}
	return r.Marker.Evaluate(env)
}

// splitMarker separates the marker from the requirement body. For direct
// references the ';' must be preceded by whitespace, since URLs may contain
// semicolons.
func splitMarker(s string) (body, marker string) {
	idx := -1
	if strings.Contains(s, "@") {
		for i := 1; i < len(s); i++ {
			if s[i] == ';' && (s[i-1] == ' ' || s[i-1] == '\t') {
				idx = i
				break
			}
		}
	} else {
		idx = strings.Index(s, ";")
	}
	if idx < 0 {
		return strings.TrimSpace(s), ""
	}
	return strings.TrimSpace(s[:idx]), strings.TrimSpace(s[idx+1:])
}

// parseSpecifier normalises "(>=1, <2)" to ">=1,<2", validating each clause.
func parseSpecifier(text string) (string, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "(") {
		if !strings.HasSuffix(text, ")") {
			return "", fmt.Errorf("unbalanced parentheses in %q", text)
		}
		text = strings.TrimSpace(text[1 : len(text)-1])
	}

	clauses := strings.Split(text, ",")
	out := make([]string, 0, len(clauses))
	for _, clause := range clauses {
		clause = strings.TrimSpace(clause)
		if !specifierRegex.MatchString(clause) {
			return "", fmt.Errorf("invalid version clause %q", clause)
		}
		out = append(out, strings.Join(strings.Fields(clause), ""))
	}
	return strings.Join(out, ","), nil
}
