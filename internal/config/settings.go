package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"

	"github.com/spf13/viper"
	"github.com/valhub-labs/valhub/internal/branding"
)

// Setting keys.
const (
	KeyUseRemoteInferencing = "use_remote_inferencing"
	KeyToken                = "token"
	KeyHubURL               = "hub_url"
	KeyPython               = "python"
	KeyHubPackage           = "hub_package"
)

// KnownKeys lists every key `config set` accepts.
var KnownKeys = []string{
	KeyUseRemoteInferencing,
	KeyToken,
	KeyHubURL,
	KeyPython,
	KeyHubPackage,
}

// DefaultPython is the interpreter used to run pip when none is configured.
const DefaultPython = "python3"

// Settings is the persisted user preference set, read once per install.
type Settings struct {
	UseRemoteInferencing bool   `mapstructure:"use_remote_inferencing"`
	Token                string `mapstructure:"token"`
	HubURL               string `mapstructure:"hub_url"`
	Python               string `mapstructure:"python"`
	HubPackage           string `mapstructure:"hub_package"`

	// Persisted is true when the values came from an existing settings file.
	// Defaults and environment overrides alone leave it false.
	Persisted bool `mapstructure:"-"`
}

// IsKnownKey reports whether key is a recognised setting.
func IsKnownKey(key string) bool {
	return slices.Contains(KnownKeys, key)
}

// LoadSettings reads the settings file at path, overlaying VALHUB_* environment
// variables and defaults. A missing file is not an error: the returned
// settings carry defaults and Persisted is false.
func LoadSettings(path string) (*Settings, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(fileType)
	v.SetEnvPrefix(branding.EnvPrefix())
	v.AutomaticEnv()
	setDefaults(v)

	persisted := true
	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("checking settings file %s: %w", path, err)
		}
		persisted = false
	}

	if persisted {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading settings file %s: %w", path, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decoding settings: %w", err)
	}
	s.Persisted = persisted
	return &s, nil
}

// LoadUserSettings reads the settings at FilePath.
func LoadUserSettings() (*Settings, error) {
	return LoadSettings(FilePath())
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyUseRemoteInferencing, false)
	v.SetDefault(KeyToken, "")
	v.SetDefault(KeyHubURL, branding.HubAPIURL())
	v.SetDefault(KeyPython, DefaultPython)
	v.SetDefault(KeyHubPackage, branding.HubPackage())
}
