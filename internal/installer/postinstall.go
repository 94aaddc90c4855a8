package installer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/valhub-labs/valhub/internal/manifest"
)

// ScriptRunner executes a script with the Python interpreter.
type ScriptRunner interface {
	RunScript(ctx context.Context, path string) error
}

// RunPostInstall runs <ModuleDir>/<post_install> when the manifest names a
// post-install script and that file exists. It reports whether the script ran.
func RunPostInstall(ctx context.Context, runner ScriptRunner, m *manifest.Manifest, plan *Plan) (bool, error) {
	if m.PostInstall == "" {
		return false, nil
	}

	script := filepath.Join(plan.ModuleDir, m.PostInstall)
	info, err := os.Stat(script)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking post-install script %s: %w", script, err)
	}
	if !info.Mode().IsRegular() {
		return false, nil
	}

	if err := runner.RunScript(ctx, script); err != nil {
		return false, err
	}
	return true, nil
}
