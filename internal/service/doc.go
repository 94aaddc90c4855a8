// Package service orchestrates a validator install: it parses the hub
// identifier, resolves the manifest and the site-packages root, decides
// whether local model assets are installed, runs the installer, the
// optional post-install script and the namespace registrar, and finally
// refreshes the in-process module handles.
package service
