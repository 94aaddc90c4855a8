package requirement

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Environment holds marker variable values such as python_version,
// sys_platform or extra.
type Environment map[string]string

// Marker variables understood by the evaluator.
var markerVariables = map[string]bool{
	"python_version":                 true,
	"python_full_version":            true,
	"os_name":                        true,
	"sys_platform":                   true,
	"platform_release":               true,
	"platform_system":                true,
	"platform_version":               true,
	"platform_machine":               true,
	"platform_python_implementation": true,
	"implementation_name":            true,
	"implementation_version":         true,
	"extra":                          true,
}

// Dotted and older spellings still accepted by pip, mapped to their
// current names.
var legacyMarkerVariables = map[string]string{
	"os.name":                        "os_name",
	"sys.platform":                   "sys_platform",
	"platform.version":               "platform_version",
	"platform.machine":               "platform_machine",
	"platform.python_implementation": "platform_python_implementation",
	"python_implementation":          "platform_python_implementation",
}

// Marker is a parsed environment marker expression.
type Marker struct {
	raw  string
	root node
}

// ParseMarker parses a marker expression like
// `python_version >= "3.8" and (sys_platform == "linux" or extra == "gpu")`.
func ParseMarker(text string) (*Marker, error) {
	tokens, err := tokenize(text)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	root, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.tokens) {
		return nil, fmt.Errorf("unexpected %q in marker %q", p.tokens[p.pos].text, text)
	}
	return &Marker{raw: strings.TrimSpace(text), root: root}, nil
}

// String returns the marker text as written.
func (m *Marker) String() string { return m.raw }

// Evaluate reports whether the marker holds in env. Variables missing from
// env evaluate as empty strings.
func (m *Marker) Evaluate(env Environment) bool {
	return m.root.eval(env)
}

type tokenKind int

const (
	tokVariable tokenKind = iota
	tokString
	tokOp
	tokAnd
	tokOr
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
}

var operators = []string{"===", "==", "!=", "<=", ">=", "~=", "<", ">"}

func tokenize(text string) ([]token, error) {
	var tokens []token
	for i := 0; i < len(text); {
		c := text[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c == '(':
			tokens = append(tokens, token{tokLParen, "("})
			i++
		case c == ')':
			tokens = append(tokens, token{tokRParen, ")"})
			i++
		case c == '"' || c == '\'':
			end := strings.IndexByte(text[i+1:], c)
			if end < 0 {
				return nil, fmt.Errorf("unterminated string in marker %q", text)
			}
			tokens = append(tokens, token{tokString, text[i+1 : i+1+end]})
			i += end + 2
		case strings.ContainsRune("=!<>~", rune(c)):
			matched := ""
			for _, op := range operators {
				if strings.HasPrefix(text[i:], op) {
					matched = op
					break
				}
			}
			if matched == "" {
				return nil, fmt.Errorf("invalid operator at %q in marker %q", text[i:], text)
			}
			tokens = append(tokens, token{tokOp, matched})
			i += len(matched)
		case isWordChar(c):
			j := i
			for j < len(text) && isWordChar(text[j]) {
				j++
			}
			word := text[i:j]
			i = j
			switch {
			case word == "and":
				tokens = append(tokens, token{tokAnd, word})
			case word == "or":
				tokens = append(tokens, token{tokOr, word})
			case word == "in":
				tokens = append(tokens, token{tokOp, "in"})
			case word == "not":
				rest := strings.TrimLeft(text[i:], " \t")
				if !strings.HasPrefix(rest, "in") || (len(rest) > 2 && isWordChar(rest[2])) {
					return nil, fmt.Errorf("expected 'in' after 'not' in marker %q", text)
				}
				i = len(text) - len(rest) + 2
				tokens = append(tokens, token{tokOp, "not in"})
			case markerVariables[word]:
				tokens = append(tokens, token{tokVariable, word})
			case legacyMarkerVariables[word] != "":
				tokens = append(tokens, token{tokVariable, legacyMarkerVariables[word]})
			default:
				return nil, fmt.Errorf("unknown marker variable %q", word)
			}
		default:
			return nil, fmt.Errorf("unexpected character %q in marker %q", c, text)
		}
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("empty marker")
	}
	return tokens, nil
}

func isWordChar(c byte) bool {
	return c == '_' || c == '.' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() *token {
	if p.pos < len(p.tokens) {
		return &p.tokens[p.pos]
	}
	return nil
}

func (p *parser) next() (token, error) {
	if p.pos >= len(p.tokens) {
		return token{}, fmt.Errorf("unexpected end of marker")
	}
	t := p.tokens[p.pos]
	p.pos++
	return t, nil
}

func (p *parser) parseOr() (node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for t := p.peek(); t != nil && t.kind == tokOr; t = p.peek() {
		p.pos++
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = orNode{left, right}
	}
	return left, nil
}

func (p *parser) parseAnd() (node, error) {
	left, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for t := p.peek(); t != nil && t.kind == tokAnd; t = p.peek() {
		p.pos++
		right, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		left = andNode{left, right}
	}
	return left, nil
}

func (p *parser) parseAtom() (node, error) {
	if t := p.peek(); t != nil && t.kind == tokLParen {
		p.pos++
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		closing, err := p.next()
		if err != nil || closing.kind != tokRParen {
			return nil, fmt.Errorf("expected ')' in marker")
		}
		return inner, nil
	}

	lhs, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	op, err := p.next()
	if err != nil {
		return nil, err
	}
	if op.kind != tokOp {
		return nil, fmt.Errorf("expected comparison operator, got %q", op.text)
	}
	rhs, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	return compareNode{lhs: lhs, op: op.text, rhs: rhs}, nil
}

func (p *parser) parseValue() (operand, error) {
	t, err := p.next()
	if err != nil {
		return operand{}, err
	}
	switch t.kind {
	case tokVariable:
		return operand{variable: t.text}, nil
	case tokString:
		return operand{literal: t.text}, nil
	default:
		return operand{}, fmt.Errorf("expected marker variable or string, got %q", t.text)
	}
}

type node interface {
	eval(env Environment) bool
}

type andNode struct{ left, right node }

func (n andNode) eval(env Environment) bool { return n.left.eval(env) && n.right.eval(env) }

type orNode struct{ left, right node }

func (n orNode) eval(env Environment) bool { return n.left.eval(env) || n.right.eval(env) }

type operand struct {
	variable string
	literal  string
}

func (o operand) value(env Environment) string {
	if o.variable != "" {
		return env[o.variable]
	}
	return o.literal
}

type compareNode struct {
	lhs operand
	op  string
	rhs operand
}

func (n compareNode) eval(env Environment) bool {
	lhs, rhs := n.lhs.value(env), n.rhs.value(env)
	if n.lhs.variable == "extra" || n.rhs.variable == "extra" {
		lhs, rhs = normalizeName(lhs), normalizeName(rhs)
	}

	switch n.op {
	case "in":
		return strings.Contains(rhs, lhs)
	case "not in":
		return !strings.Contains(rhs, lhs)
	case "===":
		return lhs == rhs
	}

	if result, ok := compareVersions(lhs, n.op, rhs); ok {
		return result
	}

	switch n.op {
	case "==":
		return lhs == rhs
	case "!=":
		return lhs != rhs
	}
	return false
}

var nameSeparators = regexp.MustCompile(`[-_.]+`)

func normalizeName(name string) string {
	return nameSeparators.ReplaceAllString(strings.ToLower(name), "-")
}

var preReleaseSuffix = regexp.MustCompile(`^(\d+(?:\.\d+)*)([A-Za-z].*)$`)

// parseVersion accepts PEP 440 style versions semver can represent,
// e.g. "3.8", "3.12.1" or "3.13.0rc1".
func parseVersion(s string) (*semver.Version, error) {
	if m := preReleaseSuffix.FindStringSubmatch(s); m != nil {
		s = m[1] + "-" + m[2]
	}
	return semver.NewVersion(s)
}

// compareVersions applies op to two versions. ok is false when either side
// is not a version, in which case the caller falls back to string compare.
func compareVersions(lhs, op, rhs string) (result, ok bool) {
	if op == "==" || op == "!=" {
		if prefix, found := strings.CutSuffix(rhs, ".*"); found {
			match := lhs == prefix || strings.HasPrefix(lhs, prefix+".")
			return match == (op == "=="), true
		}
	}

	left, err := parseVersion(lhs)
	if err != nil {
		return false, false
	}
	right, err := parseVersion(rhs)
	if err != nil {
		return false, false
	}

	switch op {
	case "==":
		return left.Equal(right), true
	case "!=":
		return !left.Equal(right), true
	case "<":
		return left.LessThan(right), true
	case "<=":
		return !left.GreaterThan(right), true
	case ">":
		return left.GreaterThan(right), true
	case ">=":
		return !left.LessThan(right), true
	case "~=":
		return compatibleRelease(left, right, rhs), true
	}
	return false, false
}

// compatibleRelease implements "~=": v >= spec and v matches spec with its
// last release segment dropped.
func compatibleRelease(v, spec *semver.Version, specText string) bool {
	if v.LessThan(spec) {
		return false
	}
	segments := strings.Count(strings.SplitN(specText, "-", 2)[0], ".") + 1
	if segments < 2 {
		return false
	}
	if segments == 2 {
		return v.Major() == spec.Major()
	}
	return v.Major() == spec.Major() && v.Minor() == spec.Minor()
}
