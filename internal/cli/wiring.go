package cli

import (
	"github.com/valhub-labs/valhub/internal/branding"
	"github.com/valhub-labs/valhub/internal/config"
	"github.com/valhub-labs/valhub/internal/hub"
	"github.com/valhub-labs/valhub/internal/installer"
	"github.com/valhub-labs/valhub/internal/loader"
	"github.com/valhub-labs/valhub/internal/namespace"
	"github.com/valhub-labs/valhub/internal/pkgmgr"
	"github.com/valhub-labs/valhub/internal/service"
)

// newService wires the install service from the user's settings. The
// settings are read once and reused for the local-models decision.
func newService(quiet bool) (*service.Service, *config.Settings, error) {
	settings, err := config.LoadUserSettings()
	if err != nil {
		return nil, nil, err
	}

	pip := pkgmgr.NewPip(settings.Python, pkgmgr.WithQuiet(quiet))
	logger.Debug("using interpreter", "python", pip.Python())

	registry := loader.NewRegistry()
	registry.SetFallback(service.FinderLoader(pip))

	client := hub.NewClient(settings.HubURL,
		hub.WithToken(settings.Token),
		hub.WithUserAgent(branding.CLIName()+"/"+buildVersion),
	)

	svc := service.New(
		client,
		loader.New(registry),
		installer.New(pip, settings.HubPackage, installer.WithLogger(logger)),
		namespace.NewRegistrar(settings.HubPackage),
		settings.HubPackage,
		service.WithLogger(logger),
		service.WithDocsURL(branding.HubDocsURL()),
		service.WithSettings(func() (*config.Settings, error) { return settings, nil }),
	)
	return svc, settings, nil
}
