package installer

import (
	"context"
	"fmt"
	"strings"

	"github.com/valhub-labs/valhub/internal/manifest"
	"github.com/valhub-labs/valhub/internal/pkgmgr"
	"github.com/valhub-labs/valhub/internal/requirement"
)

// Logger receives debug traces. *log.Logger from charmbracelet/log satisfies it.
type Logger interface {
	Debug(msg interface{}, keyvals ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debug(interface{}, ...interface{}) {}

// Installer installs validator packages with a package manager.
type Installer struct {
	mgr        pkgmgr.Manager
	hubPackage string
	logger     Logger
}

// Option configures an Installer.
type Option func(*Installer)

// WithLogger sets the debug logger.
func WithLogger(l Logger) Option {
	return func(i *Installer) { i.logger = l }
}

// New returns an Installer that installs under hubPackage.
func New(mgr pkgmgr.Manager, hubPackage string, opts ...Option) *Installer {
	i := &Installer{mgr: mgr, hubPackage: hubPackage, logger: nopLogger{}}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Install installs the package described by m into its target directory under
// sitePackages, then installs each declared requirement that applies to the
// interpreter's environment. Package manager errors are returned unmodified.
func (i *Installer) Install(ctx context.Context, m *manifest.Manifest, sitePackages string) (*Plan, error) {
	plan := BuildInstallPlan(m, sitePackages, i.hubPackage)

	i.logger.Debug("installing package", "url", plan.InstallURL, "target", plan.TargetDir)
	if err := i.mgr.Install(ctx, plan.InstallURL, "--target="+plan.TargetDir, "--no-deps"); err != nil {
		return nil, err
	}

	report, err := i.mgr.Inspect(ctx, plan.TargetDir)
	if err != nil {
		return nil, err
	}

	var env requirement.Environment
	for _, raw := range report.RequiresDist(m.PackageName) {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		req, err := requirement.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing requirement of %s: %w", m.ID, err)
		}

		if req.Marker != nil {
			if env == nil {
				if env, err = i.mgr.MarkerEnvironment(ctx); err != nil {
					return nil, err
				}
			}
			if !req.Satisfied(env) {
				i.logger.Debug("skipping requirement", "requirement", raw, "marker", req.Marker.String())
				continue
			}
		}

		i.logger.Debug("installing requirement", "requirement", req.String())
		if err := i.mgr.Install(ctx, req.String()); err != nil {
			return nil, err
		}
	}

	return plan, nil
}

// PostInstall runs the post-install script of m through the installer's
// package manager. See RunPostInstall.
func (i *Installer) PostInstall(ctx context.Context, m *manifest.Manifest, plan *Plan) (bool, error) {
	return RunPostInstall(ctx, i.mgr, m, plan)
}
