package manifest

import (
	"strings"
)

// TagRemoteEndpoint marks validators that can run inference against a remote
// endpoint instead of local models.
const TagRemoteEndpoint = "has_guardrails_endpoint"

// Manifest describes one installable validator package.
type Manifest struct {
	ID           string         `yaml:"id" json:"id"`
	Name         string         `yaml:"name" json:"name"`
	Description  string         `yaml:"description,omitempty" json:"description,omitempty"`
	Author       *Contact       `yaml:"author,omitempty" json:"author,omitempty"`
	Maintainers  []Contact      `yaml:"maintainers,omitempty" json:"maintainers,omitempty"`
	Repository   Repository     `yaml:"repository" json:"repository"`
	Namespace    string         `yaml:"namespace" json:"namespace"`
	PackageName  string         `yaml:"package_name" json:"package_name"`
	ModuleName   string         `yaml:"module_name" json:"module_name"`
	Exports      []string       `yaml:"exports" json:"exports"`
	Tags         map[string]any `yaml:"tags,omitempty" json:"tags,omitempty"`
	PostInstall  string         `yaml:"post_install,omitempty" json:"post_install,omitempty"`
	RequiresAuth bool           `yaml:"requires_auth,omitempty" json:"requires_auth,omitempty"`
}

// Contact is an author or maintainer entry.
type Contact struct {
	Name  string `yaml:"name" json:"name"`
	Email string `yaml:"email,omitempty" json:"email,omitempty"`
}

// Repository locates the package source.
type Repository struct {
	URL    string `yaml:"url" json:"url"`
	Branch string `yaml:"branch,omitempty" json:"branch,omitempty"`
}

// HasRemoteEndpoint reports whether the manifest's tags declare a remote
// inference endpoint. A missing or non-boolean tag counts as false.
func (m *Manifest) HasRemoteEndpoint() bool {
	v, ok := m.Tags[TagRemoteEndpoint].(bool)
	return ok && v
}

// NamespaceDirs returns the directory segments of the namespace: one per
// non-empty "/"-separated token, with "-" replaced by "_".
func (m *Manifest) NamespaceDirs() []string {
	var dirs []string
	for _, token := range strings.Split(m.Namespace, "/") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		dirs = append(dirs, dirName(token))
	}
	return dirs
}

// PackageDir returns the directory name of the package.
func (m *Manifest) PackageDir() string {
	return dirName(m.PackageName)
}

// Dirs returns the namespace segments followed by the package directory.
// "guardrails-ai" / "test-validator" -> ["guardrails_ai", "test_validator"]
func (m *Manifest) Dirs() []string {
	return append(m.NamespaceDirs(), m.PackageDir())
}

// ImportPath returns the fully-qualified module path of the validator under
// hubPackage, e.g. "guardrails.hub.guardrails_ai.test_validator.validator".
func (m *Manifest) ImportPath(hubPackage string) string {
	parts := append([]string{hubPackage}, m.Dirs()...)
	parts = append(parts, m.ModuleName)
	return strings.Join(parts, ".")
}

// NamespaceImportPath returns the dotted path of the namespace package under
// hubPackage. It equals hubPackage when the namespace is empty.
func (m *Manifest) NamespaceImportPath(hubPackage string) string {
	parts := append([]string{hubPackage}, m.NamespaceDirs()...)
	return strings.Join(parts, ".")
}

// dirName maps a distribution-style name to an importable directory name.
func dirName(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}
