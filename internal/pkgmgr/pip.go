package pkgmgr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/valhub-labs/valhub/internal/requirement"
)

// ErrModuleNotFound is returned by ModulePath when the interpreter cannot
// find the module.
var ErrModuleNotFound = errors.New("module not found by interpreter")

// Manager is the package manager surface used by the installer.
type Manager interface {
	// Install installs pkg (a URL or requirement string) with the given pip flags.
	Install(ctx context.Context, pkg string, flags ...string) error
	// Inspect reports the distributions installed under path.
	Inspect(ctx context.Context, path string) (*InspectReport, error)
	// MarkerEnvironment returns the PEP 508 marker variables of the interpreter.
	MarkerEnvironment(ctx context.Context) (requirement.Environment, error)
	// RunScript executes a Python script with no arguments.
	RunScript(ctx context.Context, path string) error
	// ModulePath returns the package search locations of an importable module.
	ModulePath(ctx context.Context, name string) ([]string, error)
}

// Pip implements Manager with `python -m pip`.
type Pip struct {
	python string
	quiet  bool
	runner Runner
}

// PipOption configures a Pip.
type PipOption func(*Pip)

// WithQuiet adds -q to pip commands and stops streaming subprocess output.
func WithQuiet(quiet bool) PipOption {
	return func(p *Pip) { p.quiet = quiet }
}

// WithRunner replaces the process runner.
func WithRunner(r Runner) PipOption {
	return func(p *Pip) { p.runner = r }
}

// NewPip returns a Pip that runs the given interpreter.
func NewPip(python string, opts ...PipOption) *Pip {
	p := &Pip{python: python}
	for _, opt := range opts {
		opt(p)
	}
	if p.runner == nil {
		p.runner = &ExecRunner{Env: map[string]string{
			"PIP_DISABLE_PIP_VERSION_CHECK": "1",
			"PYTHONIOENCODING":              "utf-8",
		}}
	}
	return p
}

// Python returns the interpreter the manager runs.
func (p *Pip) Python() string { return p.python }

func (p *Pip) pip(action string, args ...string) []string {
	argv := []string{p.python, "-m", "pip", action}
	argv = append(argv, args...)
	return argv
}

// Install runs `python -m pip install <flags...> [-q] <pkg>`.
func (p *Pip) Install(ctx context.Context, pkg string, flags ...string) error {
	args := append([]string{}, flags...)
	if p.quiet {
		args = append(args, "-q")
	}
	args = append(args, pkg)
	_, err := p.runner.Run(ctx, p.pip("install", args...), !p.quiet)
	return err
}

// Inspect runs `python -m pip inspect --path=<path> --no-color` and decodes
// the JSON report.
func (p *Pip) Inspect(ctx context.Context, path string) (*InspectReport, error) {
	out, err := p.runner.Run(ctx, p.pip("inspect", "--path="+path, "--no-color"), false)
	if err != nil {
		return nil, err
	}
	var report InspectReport
	if err := json.Unmarshal([]byte(out.Stdout), &report); err != nil {
		return nil, fmt.Errorf("parsing pip inspect output for %s: %w", path, err)
	}
	return &report, nil
}

const markerEnvScript = `import json, os, platform, sys
v = sys.implementation.version
iv = "%d.%d.%d" % (v.major, v.minor, v.micro)
if v.releaselevel != "final":
    iv += v.releaselevel[0] + str(v.serial)
print(json.dumps({
    "implementation_name": sys.implementation.name,
    "implementation_version": iv,
    "os_name": os.name,
    "platform_machine": platform.machine(),
    "platform_python_implementation": platform.python_implementation(),
    "platform_release": platform.release(),
    "platform_system": platform.system(),
    "platform_version": platform.version(),
    "python_full_version": platform.python_version(),
    "python_version": ".".join(platform.python_version_tuple()[:2]),
    "sys_platform": sys.platform,
}))
`

// MarkerEnvironment asks the interpreter for its marker variables. The
// "extra" variable is always empty since no extras are requested.
func (p *Pip) MarkerEnvironment(ctx context.Context) (requirement.Environment, error) {
	out, err := p.runner.Run(ctx, []string{p.python, "-c", markerEnvScript}, false)
	if err != nil {
		return nil, err
	}
	env := requirement.Environment{}
	if err := json.Unmarshal([]byte(out.Stdout), &env); err != nil {
		return nil, fmt.Errorf("parsing marker environment: %w", err)
	}
	env["extra"] = ""
	return env, nil
}

// RunScript runs `python <path>`.
func (p *Pip) RunScript(ctx context.Context, path string) error {
	_, err := p.runner.Run(ctx, []string{p.python, path}, !p.quiet)
	return err
}

const modulePathScript = `import importlib.util, json, sys
spec = importlib.util.find_spec(sys.argv[1])
print(json.dumps(None if spec is None else list(spec.submodule_search_locations or [])))
`

// ModulePath returns the submodule search locations of module name as seen by
// the interpreter. A plain (non-package) module yields an empty slice.
func (p *Pip) ModulePath(ctx context.Context, name string) ([]string, error) {
	out, err := p.runner.Run(ctx, []string{p.python, "-c", modulePathScript, name}, false)
	if err != nil {
		return nil, err
	}
	var paths *[]string
	if err := json.Unmarshal([]byte(strings.TrimSpace(out.Stdout)), &paths); err != nil {
		return nil, fmt.Errorf("parsing module path of %s: %w", name, err)
	}
	if paths == nil {
		return nil, fmt.Errorf("%w: %s", ErrModuleNotFound, name)
	}
	return *paths, nil
}
