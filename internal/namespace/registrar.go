package namespace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/valhub-labs/valhub/internal/installer"
	"github.com/valhub-labs/valhub/internal/loader"
	"github.com/valhub-labs/valhub/internal/manifest"
	"github.com/valhub-labs/valhub/internal/platform"
)

// InitFile is the registration file of a package directory.
const InitFile = "__init__.py"

// Registrar writes import statements into the hub package tree.
type Registrar struct {
	hubPackage string
}

// NewRegistrar returns a Registrar for the dotted hub package name.
func NewRegistrar(hubPackage string) *Registrar {
	return &Registrar{hubPackage: hubPackage}
}

// Statement returns the import statement registering m's exports.
func (r *Registrar) Statement(m *manifest.Manifest) Statement {
	return NewStatement(m.ImportPath(r.hubPackage), m.Exports...)
}

// HubInitPath returns <site>/<hub package dirs>/__init__.py.
func (r *Registrar) HubInitPath(sitePackages string) string {
	parts := append([]string{sitePackages}, installer.HubPackageDirs(r.hubPackage)...)
	return filepath.Join(append(parts, InitFile)...)
}

// NamespaceInitPath returns the __init__.py of m's namespace package.
func (r *Registrar) NamespaceInitPath(m *manifest.Manifest, sitePackages string) string {
	parts := append([]string{sitePackages}, strings.Split(m.NamespaceImportPath(r.hubPackage), ".")...)
	return filepath.Join(append(parts, InitFile)...)
}

// Register makes m's exports importable from the hub package and from its
// namespace package. Re-registering the same manifest writes nothing.
func (r *Registrar) Register(m *manifest.Manifest, sitePackages string) error {
	stmt := r.Statement(m)

	hubInit := r.HubInitPath(sitePackages)
	if err := os.MkdirAll(filepath.Dir(hubInit), 0755); err != nil {
		return fmt.Errorf("creating hub package directory: %w", err)
	}
	if err := appendIfMissing(hubInit, stmt); err != nil {
		return err
	}

	if len(m.NamespaceDirs()) == 0 {
		return nil
	}

	return create(r.NamespaceInitPath(m, sitePackages), stmt)
}

// appendIfMissing appends "\n"+stmt to path unless an equivalent statement is
// already there. The file is created if needed.
func appendIfMissing(path string, stmt Statement) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_APPEND|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	return writeLocked(f, path, stmt, "\n")
}

// create writes stmt as the entire content of a new file at path, creating
// parent dirs. An existing file is appended to instead.
func create(path string, stmt Statement) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating namespace directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_APPEND|os.O_CREATE|os.O_EXCL, 0644)
	if errors.Is(err, fs.ErrExist) {
		return appendIfMissing(path, stmt)
	}
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	return writeLocked(f, path, stmt, "")
}

// writeLocked appends sep+stmt to f under an exclusive lock unless an
// equivalent statement is already there, then closes f. A non-empty file
// always gets a newline separator.
func writeLocked(f *os.File, path string, stmt Statement, sep string) (err error) {
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()

	unlock, err := platform.LockFile(f)
	if err != nil {
		return err
	}
	defer func() { _ = unlock() }()

	content, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if ParseStatements(string(content)).Contains(stmt) {
		return nil
	}
	if len(content) > 0 {
		sep = "\n"
	}

	if _, err := f.WriteString(sep + stmt.String()); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// ModuleLoader returns a loader for dotted module names under sitePackages.
// A package directory loads from its __init__.py with the directory as its
// search path; a plain <name>.py module has no search path. The module's
// attributes are the names its from-imports bind.
func (r *Registrar) ModuleLoader(sitePackages string) loader.LoaderFunc {
	return func(_ context.Context, name string) (*loader.Module, error) {
		base := filepath.Join(append([]string{sitePackages}, strings.Split(name, ".")...)...)

		var (
			source string
			path   []string
		)
		if info, err := os.Stat(base); err == nil && info.IsDir() {
			source = filepath.Join(base, InitFile)
			path = []string{base}
		} else {
			source = base + ".py"
		}

		content, err := os.ReadFile(source)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path != nil {
				// Namespace package without an __init__.py.
				return &loader.Module{Name: name, Path: path, Attrs: map[string]any{}}, nil
			}
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", loader.ErrModuleNotFound, name)
			}
			return nil, fmt.Errorf("loading module %s: %w", name, err)
		}

		attrs := make(map[string]any)
		for _, stmt := range ParseStatements(string(content)) {
			for _, n := range stmt.Names {
				attrs[n.Bound()] = stmt.Module
			}
		}
		return &loader.Module{Name: name, Path: path, Attrs: attrs}, nil
	}
}
