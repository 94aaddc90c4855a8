// Package configgen renders the Python guard configuration file written by
// `valhub create`.
package configgen

import (
	"errors"
	"strings"
)

// ErrNoValidators is returned when there is nothing to configure.
var ErrNoValidators = errors.New("no validators to configure")

// Generate returns a config file that imports validators from hubPackage and
// attaches them to a Guard. An empty name leaves the guard unnamed.
func Generate(hubPackage string, validators []string, name string) (string, error) {
	if len(validators) == 0 {
		return "", ErrNoValidators
	}

	lines := []string{"from guardrails import Guard"}

	if len(validators) == 1 {
		lines = append(lines, "from "+hubPackage+" import "+validators[0])
	} else {
		lines = append(lines, "from "+hubPackage+" import (\n\t"+strings.Join(validators, ",\n\t")+"\n)")
	}

	lines = append(lines, "guard = Guard()")
	if name != "" {
		lines = append(lines, "guard.name = "+pyRepr(name))
	}

	if len(validators) == 1 {
		lines = append(lines, "guard.use("+validators[0]+"())")
	} else {
		uses := make([]string, len(validators))
		for i, v := range validators {
			uses[i] = "\t" + v + "()"
		}
		lines = append(lines, "guard.use_many(\n"+strings.Join(uses, ",\n")+"\n)")
	}

	return strings.Join(lines, "\n"), nil
}

// pyRepr quotes s as a Python string literal, preferring single quotes.
func pyRepr(s string) string {
	quote := '\''
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		quote = '"'
	}

	var b strings.Builder
	b.WriteRune(quote)
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case quote:
			b.WriteRune('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteRune(quote)
	return b.String()
}
