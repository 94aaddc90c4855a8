// Package installer turns a validator manifest into files on disk.
//
// BuildInstallPlan derives the install source and target directory from the
// manifest. Installer.Install places the package under the target with the
// package manager and then installs the package's declared requirements,
// skipping those whose environment markers do not apply. RunPostInstall
// executes the package's optional post-install script.
package installer
