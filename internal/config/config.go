package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"
	"github.com/valhub-labs/valhub/internal/branding"
	"github.com/valhub-labs/valhub/internal/platform"
)

const (
	fileName = "config"
	fileType = "yaml"

	// filePerm keeps the hub token private to the user.
	filePerm os.FileMode = 0600
)

// Dir returns the path to the config directory (~/.valhub/).
// VALHUB_HOME overrides it.
func Dir() string {
	if v := os.Getenv(branding.EnvVar("HOME")); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file (~/.valhub/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// Get returns the effective value of key from the settings file at path,
// after environment overrides and defaults.
func Get(path, key string) (string, error) {
	if !IsKnownKey(key) {
		return "", fmt.Errorf("unknown config key %q (known keys: %v)", key, KnownKeys)
	}
	s, err := LoadSettings(path)
	if err != nil {
		return "", err
	}
	switch key {
	case KeyUseRemoteInferencing:
		return strconv.FormatBool(s.UseRemoteInferencing), nil
	case KeyToken:
		return s.Token, nil
	case KeyHubURL:
		return s.HubURL, nil
	case KeyPython:
		return s.Python, nil
	default:
		return s.HubPackage, nil
	}
}

// Set stores key=value in the settings file at path, keeping the other keys
// already in it. The file is created with owner-only permissions.
func Set(path, key, value string) error {
	if !IsKnownKey(key) {
		return fmt.Errorf("unknown config key %q (known keys: %v)", key, KnownKeys)
	}

	var stored any = value
	if key == KeyUseRemoteInferencing {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s must be true or false, got %q", key, value)
		}
		stored = b
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	// A bare instance so defaults and environment overrides are not written
	// back to disk.
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(fileType)
	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading settings file %s: %w", path, err)
		}
	}
	v.Set(key, stored)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing settings file %s: %w", path, err)
	}
	if err := platform.Chmod(path, filePerm); err != nil {
		return fmt.Errorf("securing settings file: %w", err)
	}
	return nil
}
