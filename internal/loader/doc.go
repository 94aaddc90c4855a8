// Package loader keeps in-process handles for installed modules.
//
// A Registry maps fully-qualified module names to the LoaderFunc that
// produces them; loaders are registered as packages are installed, and an
// optional fallback finder resolves modules nobody registered. Loader caches
// loaded modules in a Cache and can reload a cached module in place so that
// holders of the handle observe the refreshed contents.
package loader
