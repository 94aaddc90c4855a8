//go:build integration

package integration_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// testEnv holds paths to isolated test directories.
type testEnv struct {
	HomeDir string // VALHUB_HOME, holds config.yaml
	SiteDir string // fake site-packages root
	Python  string // fake interpreter script
	CallLog string // one line per interpreter invocation
}

// fakePython emulates the interpreter calls the installer makes:
// pip install/inspect, the two -c helper scripts and running a script file.
const fakePython = `#!/bin/sh
echo "$*" >> "$FAKE_PY_LOG"
if [ "$1" = "-m" ] && [ "$2" = "pip" ]; then
  action="$3"; shift 3
  case "$action" in
    install)
      for arg in "$@"; do
        case "$arg" in
          --target=*)
            dir="${arg#--target=}/$FAKE_MODULE"
            mkdir -p "$dir"
            printf 'from .main import %s\n' "$FAKE_EXPORT" > "$dir/__init__.py"
            printf 'print("downloading models")\n' > "$dir/post_install.py"
            ;;
        esac
      done
      ;;
    inspect)
      printf '{"version":"1","pip_version":"24.0","installed":[{"metadata":{"name":"%s","version":"0.1.0","requires_dist":["rstr","pydash (>=7.0.6,<8.0.0)","faiss-cpu>=1.7 ; extra == \\"vectordb\\""]}}]}\n' "$FAKE_DIST"
      ;;
  esac
  exit 0
fi
if [ "$1" = "-c" ]; then
  if [ $# -ge 3 ]; then
    printf '["%s/pip"]\n' "$FAKE_SITE"
  else
    printf '{"python_version":"3.11","sys_platform":"linux","os_name":"posix"}\n'
  fi
  exit 0
fi
touch "$1.ran"
exit 0
`

// setupTestEnv creates isolated temp directories, a fake interpreter and the
// environment variables that sandbox every operation.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available, skipping")
	}

	env := &testEnv{
		HomeDir: t.TempDir(),
		SiteDir: t.TempDir(),
	}
	binDir := t.TempDir()
	env.Python = filepath.Join(binDir, "python")
	env.CallLog = filepath.Join(binDir, "calls.log")
	writeFile(t, env.Python, fakePython)
	if err := os.Chmod(env.Python, 0755); err != nil {
		t.Fatalf("chmod fake python: %v", err)
	}

	t.Setenv("VALHUB_HOME", env.HomeDir)
	t.Setenv("FAKE_PY_LOG", env.CallLog)
	t.Setenv("FAKE_SITE", env.SiteDir)
	t.Setenv("FAKE_MODULE", "validator")
	t.Setenv("FAKE_EXPORT", "TestValidator")
	t.Setenv("FAKE_DIST", "test-validator")

	return env
}

// calls returns the recorded interpreter invocations.
func (e *testEnv) calls(t *testing.T) []string {
	t.Helper()
	data, err := os.ReadFile(e.CallLog)
	if err != nil {
		t.Fatalf("reading call log: %v", err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("creating dir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file to exist: %s", path)
	}
}

func assertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("expected file not to exist: %s", path)
	}
}

func assertFileContent(t *testing.T, path, want string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	if string(data) != want {
		t.Errorf("%s content = %q, want %q", path, data, want)
	}
}
