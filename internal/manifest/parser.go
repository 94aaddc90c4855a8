package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.yaml.in/yaml/v3"
)

// ErrInvalidManifest is matched by every schema violation error.
var ErrInvalidManifest = errors.New("invalid manifest")

// ValidationError reports the schema issues of a rejected manifest.
type ValidationError struct {
	Issues []ValidationIssue
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		msgs = append(msgs, issue.String())
	}
	return fmt.Sprintf("%s: %s", ErrInvalidManifest, strings.Join(msgs, "; "))
}

// Is makes errors.Is(err, ErrInvalidManifest) true for validation errors.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidManifest
}

// Parse validates a manifest document (JSON as served by the hub, or YAML)
// and decodes it.
func Parse(data []byte) (*Manifest, error) {
	result, err := Validate(data)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, &ValidationError{Issues: result.Issues}
	}

	var m Manifest
	if isJSON(data) {
		err = json.Unmarshal(data, &m)
	} else {
		err = yaml.Unmarshal(data, &m)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding manifest: %w", err)
	}
	return &m, nil
}

// decodeDocument decodes data into generic JSON-compatible values.
func decodeDocument(data []byte) (any, error) {
	var raw any
	if isJSON(data) {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parsing JSON: %w", err)
		}
		return raw, nil
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	return raw, nil
}

func isJSON(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
