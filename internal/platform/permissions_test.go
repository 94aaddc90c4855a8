package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestChmodSettingsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("token: x\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := Chmod(path, 0600); err != nil {
		t.Fatalf("Chmod failed: %v", err)
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if perm := info.Mode().Perm(); perm != 0600 {
			t.Errorf("permissions = %o, want %o", perm, 0600)
		}
	}
}

func TestChmodMissingFile(t *testing.T) {
	if err := Chmod(filepath.Join(t.TempDir(), "missing"), 0600); err == nil {
		t.Error("expected error for missing file")
	}
}
