package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/valhub-labs/valhub/internal/branding"
)

func TestLoadSettingsMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if s.Persisted {
		t.Error("Persisted should be false when the file does not exist")
	}
	if s.UseRemoteInferencing {
		t.Error("UseRemoteInferencing should default to false")
	}
	if s.HubURL != branding.HubAPIURL() {
		t.Errorf("HubURL = %q, want %q", s.HubURL, branding.HubAPIURL())
	}
	if s.Python != DefaultPython {
		t.Errorf("Python = %q, want %q", s.Python, DefaultPython)
	}
	if s.HubPackage != branding.HubPackage() {
		t.Errorf("HubPackage = %q, want %q", s.HubPackage, branding.HubPackage())
	}
}

func TestLoadSettingsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "use_remote_inferencing: true\ntoken: secret\npython: /usr/bin/python3.12\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if !s.Persisted {
		t.Error("Persisted should be true")
	}
	if !s.UseRemoteInferencing {
		t.Error("UseRemoteInferencing should be true")
	}
	if s.Token != "secret" {
		t.Errorf("Token = %q, want %q", s.Token, "secret")
	}
	if s.Python != "/usr/bin/python3.12" {
		t.Errorf("Python = %q", s.Python)
	}
}

func TestLoadSettingsStringBool(t *testing.T) {
	// `config set` writes every value as a string.
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("use_remote_inferencing: \"true\"\n"), 0600); err != nil {
		t.Fatal(err)
	}

	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if !s.UseRemoteInferencing {
		t.Error("UseRemoteInferencing should decode \"true\" as true")
	}
}

func TestLoadSettingsInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("token: [unterminated\n"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadSettings(path); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestLoadSettingsEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv("VALHUB_TOKEN", "from-env")

	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if s.Token != "from-env" {
		t.Errorf("Token = %q, want %q", s.Token, "from-env")
	}
	if s.Persisted {
		t.Error("environment overrides alone must not mark settings as persisted")
	}
}

func TestIsKnownKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"token", true},
		{"use_remote_inferencing", true},
		{"hub_url", true},
		{"mirror", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsKnownKey(tt.key); got != tt.want {
			t.Errorf("IsKnownKey(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestDirOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("VALHUB_HOME", dir)

	if got := Dir(); got != dir {
		t.Errorf("Dir() = %q, want %q", got, dir)
	}
	if got := FilePath(); got != filepath.Join(dir, "config.yaml") {
		t.Errorf("FilePath() = %q", got)
	}
}
