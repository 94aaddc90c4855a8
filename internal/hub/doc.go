// Package hub resolves validator manifests from the hub service. It parses
// hub:// identifiers and fetches manifests over HTTP, retrying transient
// upstream failures with exponential backoff.
package hub
