package platform

import (
	"os"
	"runtime"
)

// Chmod sets file permissions. Windows has no Unix permission bits, so it is
// a no-op there; a missing file is still reported.
func Chmod(path string, mode os.FileMode) error {
	if runtime.GOOS == "windows" {
		_, err := os.Stat(path)
		return err
	}
	return os.Chmod(path, mode)
}
