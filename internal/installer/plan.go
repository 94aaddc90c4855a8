package installer

import (
	"path/filepath"
	"strings"

	"github.com/valhub-labs/valhub/internal/manifest"
)

// Plan describes where and from what a validator package is installed.
type Plan struct {
	InstallURL string // repository URL, "@<branch>" appended when a branch is set
	TargetDir  string // <site-packages>/<hub package dirs>/<namespace dirs>/<package dir>
	ModuleDir  string // TargetDir/<module_name>
	ImportPath string // dotted module path of the validator module
}

// BuildInstallPlan computes the install plan of m for the given site-packages
// root and hub package (e.g. "guardrails.hub").
func BuildInstallPlan(m *manifest.Manifest, sitePackages, hubPackage string) *Plan {
	parts := []string{sitePackages}
	parts = append(parts, HubPackageDirs(hubPackage)...)
	parts = append(parts, m.Dirs()...)
	target := filepath.Join(parts...)

	return &Plan{
		InstallURL: InstallURL(m),
		TargetDir:  target,
		ModuleDir:  filepath.Join(target, m.ModuleName),
		ImportPath: m.ImportPath(hubPackage),
	}
}

// InstallURL returns the pip install source of m.
func InstallURL(m *manifest.Manifest) string {
	if m.Repository.Branch != "" {
		return m.Repository.URL + "@" + m.Repository.Branch
	}
	return m.Repository.URL
}

// HubPackageDirs splits a dotted hub package name into directory segments.
func HubPackageDirs(hubPackage string) []string {
	var dirs []string
	for _, part := range strings.Split(hubPackage, ".") {
		if part != "" {
			dirs = append(dirs, part)
		}
	}
	return dirs
}
