// Package inventory defines the data model for third-party component
// inventories. An Inventory is the structured output of scanning a
// repository: declared dependencies, vendored code candidates, and
// third-party assets, optionally enriched with license and registry
// metadata.
package inventory

import (
	"encoding/json"
	"os"
	"path"
	"time"

	"github.com/credtally/credtally/pkg/errors"
)

// VersionUnknown is the sentinel used when no version could be determined.
const VersionUnknown = "unknown"

// LicenseInfo holds information extracted from a license file.
type LicenseInfo struct {
	Type       string   `json:"type,omitempty" yaml:"type,omitempty"`             // e.g. "MIT", "Apache-2.0", "BSD-3-Clause"
	FilePath   string   `json:"file_path,omitempty" yaml:"file_path,omitempty"`   // Relative path from repo root
	Text       string   `json:"text,omitempty" yaml:"text,omitempty"`             // License text, possibly truncated
	Copyrights []string `json:"copyrights,omitempty" yaml:"copyrights,omitempty"` // Copyright statements found in the text
	SPDXID     string   `json:"spdx_id,omitempty" yaml:"spdx_id,omitempty"`       // SPDX identifier if detected
}

// RegistryInfo holds package metadata retrieved from a package registry.
type RegistryInfo struct {
	Name       string `json:"name" yaml:"name"`
	Version    string `json:"version,omitempty" yaml:"version,omitempty"`
	License    string `json:"license,omitempty" yaml:"license,omitempty"`
	HomePage   string `json:"home_page,omitempty" yaml:"home_page,omitempty"`
	ProjectURL string `json:"project_url,omitempty" yaml:"project_url,omitempty"`
	Author     string `json:"author,omitempty" yaml:"author,omitempty"`
	Summary    string `json:"summary,omitempty" yaml:"summary,omitempty"`
}

// Dependency represents a declared dependency found in a manifest file.
type Dependency struct {
	Source      string        `json:"source" yaml:"source"` // Locator, e.g. "requirements.txt:12" or "pyproject.toml:project.dependencies"
	Name        string        `json:"name" yaml:"name"`
	VersionSpec string        `json:"version_spec" yaml:"version_spec"` // e.g. "==1.2.3", ">=1.0,<2.0", "unknown"
	RawLine     string        `json:"raw_line,omitempty" yaml:"raw_line,omitempty"`
	License     *LicenseInfo  `json:"license_info,omitempty" yaml:"license_info,omitempty"`
	Registry    *RegistryInfo `json:"registry_info,omitempty" yaml:"registry_info,omitempty"`
}

// VendoredCandidate represents a path that appears to contain vendored
// third-party code.
type VendoredCandidate struct {
	Path          string       `json:"path" yaml:"path"`     // Relative path from repo root
	Reason        string       `json:"reason" yaml:"reason"` // Why this path looks third-party
	LicenseFiles  []string     `json:"license_files,omitempty" yaml:"license_files,omitempty"`
	VendorPattern bool         `json:"vendor_pattern" yaml:"vendor_pattern"` // Matched a known vendor path pattern
	License       *LicenseInfo `json:"license_info,omitempty" yaml:"license_info,omitempty"`
}

// AssetType classifies a third-party asset candidate.
type AssetType string

// Asset types recognized by the scanner.
const (
	AssetFont  AssetType = "font"
	AssetJS    AssetType = "js"
	AssetCSS   AssetType = "css"
	AssetOther AssetType = "other"
)

// AssetCandidate represents a static asset that appears to be third-party.
type AssetCandidate struct {
	Path   string    `json:"path" yaml:"path"` // Relative path from repo root
	Type   AssetType `json:"type" yaml:"type"`
	Reason string    `json:"reason" yaml:"reason"`
}

// CreditsInfo describes the repository's software_credits file.
type CreditsInfo struct {
	Exists      bool   `json:"exists" yaml:"exists"`
	Path        string `json:"path,omitempty" yaml:"path,omitempty"`
	Placeholder bool   `json:"placeholder" yaml:"placeholder"` // "no third parties" stub file
	LineCount   int    `json:"line_count" yaml:"line_count"`   // Non-empty lines
}

// Inventory is the complete third-party inventory for a repository.
type Inventory struct {
	RepoPath           string              `json:"repo_path" yaml:"repo_path"`
	ScannedAt          time.Time           `json:"scanned_at" yaml:"scanned_at"`
	Dependencies       []Dependency        `json:"dependencies" yaml:"dependencies"`
	VendoredCandidates []VendoredCandidate `json:"vendored_candidates" yaml:"vendored_candidates"`
	AssetCandidates    []AssetCandidate    `json:"asset_candidates" yaml:"asset_candidates"`
	Credits            *CreditsInfo        `json:"software_credits,omitempty" yaml:"software_credits,omitempty"`
	FrozenRequirements []string            `json:"frozen_requirements_files,omitempty" yaml:"frozen_requirements_files,omitempty"`
}

// New creates an empty inventory for the given repository path,
// stamped with the current time.
func New(repoPath string) *Inventory {
	return &Inventory{
		RepoPath:  repoPath,
		ScannedAt: time.Now().UTC(),
	}
}

// Component is the reconciler's view of a detected component: a name,
// an optional version spec, and a locator saying where it was found.
type Component struct {
	Name        string `json:"name" yaml:"name"`
	VersionSpec string `json:"version_spec,omitempty" yaml:"version_spec,omitempty"`
	Origin      string `json:"origin,omitempty" yaml:"origin,omitempty"`
}

// Components flattens the inventory into the detected-component view
// consumed by the reconciler. Vendored candidates and assets contribute
// the basename of their path as the component name and carry no version.
func (inv *Inventory) Components() []Component {
	components := make([]Component, 0, len(inv.Dependencies)+len(inv.VendoredCandidates)+len(inv.AssetCandidates))

	for _, dep := range inv.Dependencies {
		components = append(components, Component{
			Name:        dep.Name,
			VersionSpec: dep.VersionSpec,
			Origin:      dep.Source,
		})
	}
	for _, vendored := range inv.VendoredCandidates {
		components = append(components, Component{
			Name:   path.Base(vendored.Path),
			Origin: vendored.Path,
		})
	}
	for _, asset := range inv.AssetCandidates {
		components = append(components, Component{
			Name:   path.Base(asset.Path),
			Origin: asset.Path,
		})
	}

	return components
}

// SaveJSON writes the inventory to a JSON file.
func (inv *Inventory) SaveJSON(outputPath string) error {
	data, err := json.MarshalIndent(inv, "", "  ")
	if err != nil {
		return errors.WrapResource("save", "inventory", outputPath, err)
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return errors.WrapIO("write", outputPath, err)
	}
	return nil
}

// Load reads an inventory from a JSON file previously written by SaveJSON.
func Load(inputPath string) (*Inventory, error) {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, errors.WrapIO("read", inputPath, err)
	}
	var inv Inventory
	if err := json.Unmarshal(data, &inv); err != nil {
		return nil, errors.WrapParse("json", inputPath, err)
	}
	return &inv, nil
}
