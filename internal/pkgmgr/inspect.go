package pkgmgr

import "strings"

// InspectReport is the JSON document printed by `pip inspect`.
type InspectReport struct {
	Version     string                  `json:"version"`
	PipVersion  string                  `json:"pip_version"`
	Installed   []InstalledDistribution `json:"installed"`
	Environment map[string]string       `json:"environment,omitempty"`
}

// InstalledDistribution is one entry of InspectReport.Installed.
type InstalledDistribution struct {
	Metadata         DistributionMetadata `json:"metadata"`
	MetadataLocation string               `json:"metadata_location,omitempty"`
	Installer        string               `json:"installer,omitempty"`
	Requested        bool                 `json:"requested,omitempty"`
}

// DistributionMetadata is the subset of core metadata the installer reads.
type DistributionMetadata struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	RequiresDist []string `json:"requires_dist,omitempty"`
}

// RequiresDist returns the declared requirements of the distribution named
// packageName, or of the first distribution when none matches. Names compare
// case-insensitively with '-', '_' and '.' treated alike.
func (r *InspectReport) RequiresDist(packageName string) []string {
	if r == nil || len(r.Installed) == 0 {
		return nil
	}
	want := canonicalName(packageName)
	for _, dist := range r.Installed {
		if canonicalName(dist.Metadata.Name) == want {
			return dist.Metadata.RequiresDist
		}
	}
	return r.Installed[0].Metadata.RequiresDist
}

func canonicalName(name string) string {
	return strings.NewReplacer("_", "-", ".", "-").Replace(strings.ToLower(name))
}
