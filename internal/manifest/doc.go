// Package manifest handles parsing and validation of validator manifests as
// served by the hub. Manifests are validated against the embedded JSON schema
// before decoding, and expose the path helpers that tie a manifest's
// (namespace, package_name, module_name) triple to its install directory and
// import path.
package manifest
