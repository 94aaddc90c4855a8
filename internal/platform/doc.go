// Package platform provides cross-platform filesystem operations: permission
// management and advisory file locking. On Unix systems it uses chmod and
// flock directly. On Windows both are no-ops.
package platform
