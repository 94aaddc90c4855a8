// Package pkgmgr drives the Python package manager (pip) as a subprocess.
// The Manager interface covers what an install needs: installing a package,
// inspecting an install target, querying the marker environment, running a
// script with the interpreter and locating a module on disk. Pip is the
// production implementation; a Runner abstracts process execution so tests
// can substitute a fake.
package pkgmgr
