package hub

import (
	"errors"
	"fmt"
	"strings"
)

// Scheme prefixes every hub identifier.
const Scheme = "hub://"

// ErrInvalidHubURI is returned for identifiers without the hub:// prefix.
var ErrInvalidHubURI = errors.New("invalid hub install URL")

// ParseURI strips the hub:// prefix from uri and returns the validator id,
// e.g. "hub://guardrails/regex_match" -> "guardrails/regex_match".
func ParseURI(uri string) (string, error) {
	uri = strings.TrimSpace(uri)
	if !strings.HasPrefix(uri, Scheme) {
		return "", fmt.Errorf("%w: %q does not start with %s", ErrInvalidHubURI, uri, Scheme)
	}
	id := strings.TrimPrefix(uri, Scheme)
	if id == "" {
		return "", fmt.Errorf("%w: %q names no validator", ErrInvalidHubURI, uri)
	}
	return id, nil
}

// URI formats a validator id as a hub identifier.
func URI(id string) string {
	return Scheme + id
}
