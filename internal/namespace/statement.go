package namespace

import (
	"regexp"
	"strings"
)

// ImportedName is one name of a from-import, with its optional alias.
type ImportedName struct {
	Name  string
	Alias string
}

// Bound returns the name the import binds in the importing module.
func (n ImportedName) Bound() string {
	if n.Alias != "" {
		return n.Alias
	}
	return n.Name
}

// Statement is a `from <Module> import <Names>` statement.
type Statement struct {
	Module string
	Names  []ImportedName
}

// NewStatement returns a statement importing names from module.
func NewStatement(module string, names ...string) Statement {
	s := Statement{Module: module}
	for _, n := range names {
		s.Names = append(s.Names, ImportedName{Name: n})
	}
	return s
}

// String renders the statement on one line.
func (s Statement) String() string {
	parts := make([]string, len(s.Names))
	for i, n := range s.Names {
		parts[i] = n.Name
		if n.Alias != "" {
			parts[i] += " as " + n.Alias
		}
	}
	return "from " + s.Module + " import " + strings.Join(parts, ", ")
}

// binds reports whether s binds name under its own name.
func (s Statement) binds(name string) bool {
	for _, n := range s.Names {
		if n.Name == name && n.Bound() == name {
			return true
		}
	}
	return false
}

// StatementSet is the from-import statements found in a file.
type StatementSet []Statement

// Contains reports whether an equivalent statement is present: one importing
// from the same module and binding at least the same names.
func (ss StatementSet) Contains(want Statement) bool {
	for _, s := range ss {
		if s.Module != want.Module {
			continue
		}
		all := true
		for _, n := range want.Names {
			if !s.binds(n.Name) {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

var fromImport = regexp.MustCompile(`^from\s+([.\w]+)\s+import\s+(.+)$`)

// ParseStatements extracts the from-import statements of a Python source
// file. Single-line, parenthesised multi-line and backslash-continued forms
// are understood; all other lines are ignored.
func ParseStatements(content string) StatementSet {
	var set StatementSet
	lines := strings.Split(content, "\n")
	for i := 0; i < len(lines); i++ {
		line := stripComment(lines[i])
		for strings.HasSuffix(line, `\`) && i+1 < len(lines) {
			i++
			line = strings.TrimSuffix(line, `\`) + " " + stripComment(lines[i])
		}

		match := fromImport.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		names := strings.TrimSpace(match[2])
		if strings.HasPrefix(names, "(") {
			for !strings.Contains(names, ")") && i+1 < len(lines) {
				i++
				names += " " + stripComment(lines[i])
			}
			names = strings.TrimPrefix(names, "(")
			if end := strings.Index(names, ")"); end >= 0 {
				names = names[:end]
			}
		}

		stmt := Statement{Module: match[1]}
		for _, part := range strings.Split(names, ",") {
			fields := strings.Fields(part)
			switch {
			case len(fields) == 1:
				stmt.Names = append(stmt.Names, ImportedName{Name: fields[0]})
			case len(fields) == 3 && fields[1] == "as":
				stmt.Names = append(stmt.Names, ImportedName{Name: fields[0], Alias: fields[2]})
			}
		}
		if len(stmt.Names) > 0 {
			set = append(set, stmt)
		}
	}
	return set
}

func stripComment(line string) string {
	if idx := strings.Index(line, "#"); idx >= 0 {
		line = line[:idx]
	}
	return strings.TrimSpace(line)
}
