//go:build !unix

package platform

import "os"

// LockFile is a no-op on platforms without flock.
func LockFile(_ *os.File) (func() error, error) {
	return func() error { return nil }, nil
}
