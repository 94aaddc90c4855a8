package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/valhub-labs/valhub/internal/config"
	"github.com/valhub-labs/valhub/internal/hub"
	"github.com/valhub-labs/valhub/internal/installer"
	"github.com/valhub-labs/valhub/internal/loader"
	"github.com/valhub-labs/valhub/internal/manifest"
	"github.com/valhub-labs/valhub/internal/namespace"
)

// ErrLocalModelFlagNotSet is returned when a validator can run remotely, no
// preference is configured, and the caller could not decide interactively.
var ErrLocalModelFlagNotSet = errors.New("local model installation flag not set: pass --local-models or --no-local-models, or configure use_remote_inferencing")

// Lifecycle messages.
const (
	msgLocalModels  = "Installing models locally!"
	msgRemoteModels = "Skipping post install, models will not be downloaded for local inference."
)

// Logger receives lifecycle events. *log.Logger from charmbracelet/log
// satisfies it.
type Logger interface {
	Info(msg interface{}, keyvals ...interface{})
}

type nopLogger struct{}

func (nopLogger) Info(interface{}, ...interface{}) {}

// ConfirmFunc asks the user whether to install local models.
type ConfirmFunc func() (bool, error)

// SettingsFunc loads the user's persisted settings.
type SettingsFunc func() (*config.Settings, error)

// Options are the per-install caller choices.
type Options struct {
	// InstallLocalModels forces the local-models decision when non-nil.
	InstallLocalModels *bool
	// Confirm is asked when the decision cannot be derived otherwise.
	Confirm ConfirmFunc
}

// Service installs validators from the hub.
type Service struct {
	resolver   hub.Resolver
	loader     *loader.Loader
	installer  *installer.Installer
	registrar  *namespace.Registrar
	settings   SettingsFunc
	logger     Logger
	hubPackage string
	docsURL    string
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the lifecycle logger.
func WithLogger(l Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithSettings sets the settings source. The default reads the user's
// settings file.
func WithSettings(fn SettingsFunc) Option {
	return func(s *Service) { s.settings = fn }
}

// WithDocsURL sets the base URL of validator documentation pages.
func WithDocsURL(url string) Option {
	return func(s *Service) { s.docsURL = url }
}

// New returns a Service. hubPackage must match the one the installer and
// registrar were built with.
func New(resolver hub.Resolver, ld *loader.Loader, inst *installer.Installer, reg *namespace.Registrar, hubPackage string, opts ...Option) *Service {
	s := &Service{
		resolver:   resolver,
		loader:     ld,
		installer:  inst,
		registrar:  reg,
		settings:   config.LoadUserSettings,
		logger:     nopLogger{},
		hubPackage: hubPackage,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Prepare resolves the manifest of id and the site-packages root.
func (s *Service) Prepare(ctx context.Context, id string) (*manifest.Manifest, string, error) {
	m, err := s.resolver.FetchManifest(ctx, id)
	if err != nil {
		return nil, "", err
	}
	site, err := s.loader.SitePackages(ctx)
	if err != nil {
		return nil, "", err
	}
	return m, site, nil
}

// Install installs the validator named by uri ("hub://<namespace>/<package>")
// and returns the refreshed handle of its module. Any failing step aborts
// the install; errors from the package manager and the loader are returned
// unmodified.
func (s *Service) Install(ctx context.Context, uri string, opts Options) (*loader.Module, error) {
	id, err := hub.ParseURI(uri)
	if err != nil {
		return nil, err
	}

	m, site, err := s.Prepare(ctx, id)
	if err != nil {
		return nil, err
	}

	local, err := s.installLocalModels(m, opts)
	if err != nil {
		return nil, err
	}

	s.logger.Info(fmt.Sprintf("Installing %s...", uri))
	if local {
		s.logger.Info(msgLocalModels)
	} else {
		s.logger.Info(msgRemoteModels)
	}

	mod, err := s.install(ctx, m, site, local)
	if err != nil {
		return nil, err
	}

	s.logger.Info(s.successMessage(uri, m))
	return mod, nil
}

// InstallManifest runs the install steps for an already resolved manifest:
// install, post-install when local models are requested, registration and
// module refresh. It logs nothing.
func (s *Service) InstallManifest(ctx context.Context, m *manifest.Manifest, site string, localModels bool) (*loader.Module, error) {
	return s.install(ctx, m, site, localModels)
}

func (s *Service) install(ctx context.Context, m *manifest.Manifest, site string, local bool) (*loader.Module, error) {
	plan, err := s.installer.Install(ctx, m, site)
	if err != nil {
		return nil, err
	}

	if local {
		if _, err := s.installer.PostInstall(ctx, m, plan); err != nil {
			return nil, err
		}
	}

	if err := s.registrar.Register(m, site); err != nil {
		return nil, fmt.Errorf("registering %s: %w", m.ID, err)
	}

	moduleLoader := s.registrar.ModuleLoader(site)
	registry := s.loader.Registry()
	registry.Register(s.hubPackage, moduleLoader)
	registry.Register(plan.ImportPath, moduleLoader)

	if _, err := s.loader.Reload(ctx, s.hubPackage); err != nil {
		return nil, err
	}
	return s.loader.Reload(ctx, plan.ImportPath)
}

// installLocalModels decides whether local model assets are installed.
func (s *Service) installLocalModels(m *manifest.Manifest, opts Options) (bool, error) {
	if opts.InstallLocalModels != nil {
		return *opts.InstallLocalModels, nil
	}

	settings, err := s.settings()
	if err != nil {
		return false, fmt.Errorf("loading settings: %w", err)
	}
	if settings.Persisted {
		return !(settings.UseRemoteInferencing && m.HasRemoteEndpoint()), nil
	}

	if m.HasRemoteEndpoint() {
		if opts.Confirm == nil {
			return false, ErrLocalModelFlagNotSet
		}
		ok, err := opts.Confirm()
		if err != nil {
			return false, fmt.Errorf("%w: %v", ErrLocalModelFlagNotSet, err)
		}
		return ok, nil
	}
	return true, nil
}

func (s *Service) successMessage(uri string, m *manifest.Manifest) string {
	export := ""
	if len(m.Exports) > 0 {
		export = m.Exports[0]
	}
	return fmt.Sprintf("✅Successfully installed %s!\n\nImport validator:\nfrom %s import %s\n\nGet more info:\n%s%s\n",
		uri, s.hubPackage, export, s.docsURL, m.ID)
}
