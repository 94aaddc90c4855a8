// Package branding provides compile-time identity values for the CLI.
//
// The values live in branding.yaml next to this file and are baked into the
// binary with //go:embed. Hard defaults apply when the embedded file is empty.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName     string `yaml:"cli_name"`
	DisplayName string `yaml:"display_name"`
	Description string `yaml:"description"`
	HomeDir     string `yaml:"home_dir"`
	EnvPrefix   string `yaml:"env_prefix"`
	HubPackage  string `yaml:"hub_package"`
	HubAPIURL   string `yaml:"hub_api_url"`
	HubDocsURL  string `yaml:"hub_docs_url"`
}

func load() {
	once.Do(func() {
		defaults = brand{
			CLIName:     "valhub",
			DisplayName: "Validator Hub",
			Description: "Install validator packages from the hub",
			HomeDir:     ".valhub",
			EnvPrefix:   "VALHUB",
			HubPackage:  "guardrails.hub",
			HubAPIURL:   "https://hub.api.guardrailsai.com",
			HubDocsURL:  "https://hub.guardrailsai.com/validator/",
		}
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "valhub").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name.
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// HomeDir returns the dot-directory name under $HOME (e.g., ".valhub").
func HomeDir() string { load(); return defaults.HomeDir }

// EnvPrefix returns the environment variable prefix (e.g., "VALHUB").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// HubPackage returns the dotted Python package that installed validators are
// registered under (e.g., "guardrails.hub").
func HubPackage() string { load(); return defaults.HubPackage }

// HubAPIURL returns the default base URL of the manifest service.
func HubAPIURL() string { load(); return defaults.HubAPIURL }

// HubDocsURL returns the prefix of per-validator documentation links.
// The validator id is appended verbatim.
func HubDocsURL() string { load(); return defaults.HubDocsURL }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("HOME") → "VALHUB_HOME".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
