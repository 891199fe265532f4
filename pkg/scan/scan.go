// Package scan builds a third-party inventory for a repository. The
// scanner reads dependency manifests (requirements files, pyproject,
// setup.py), walks the tree for vendored code and bundled assets, and
// optionally enriches what it finds with license classification and
// package registry metadata.
package scan

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/karrick/godirwalk"
	"github.com/rs/zerolog"

	"github.com/credtally/credtally/pkg/credits"
	"github.com/credtally/credtally/pkg/errors"
	"github.com/credtally/credtally/pkg/inventory"
	"github.com/credtally/credtally/pkg/license"
	"github.com/credtally/credtally/pkg/logging"
)

// RegistryClient looks up package metadata by name and version spec.
// *registry.Client satisfies it.
type RegistryClient interface {
	Lookup(ctx context.Context, name, versionSpec string) (*inventory.RegistryInfo, error)
}

// Scanner walks a repository and produces an inventory.
type Scanner struct {
	extractLicenses bool
	registry        RegistryClient
	vendorNames     map[string]bool
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLicenseExtraction enables license classification for vendored
// candidates that carry their own license files.
func WithLicenseExtraction() Option {
	return func(s *Scanner) { s.extractLicenses = true }
}

// WithRegistry enables registry lookups for declared dependencies.
// Lookup failures are logged and skipped, never fatal.
func WithRegistry(client RegistryClient) Option {
	return func(s *Scanner) { s.registry = client }
}

// WithVendorDirNames adds directory names to the vendored-code
// detection set, on top of the built-in conventions.
func WithVendorDirNames(names ...string) Option {
	return func(s *Scanner) {
		for _, name := range names {
			s.vendorNames[strings.ToLower(name)] = true
		}
	}
}

// New creates a Scanner.
func New(opts ...Option) *Scanner {
	s := &Scanner{
		vendorNames: make(map[string]bool, len(vendorDirNames)),
	}
	for name := range vendorDirNames {
		s.vendorNames[name] = true
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan builds the inventory for the repository at repoPath.
func (s *Scanner) Scan(ctx context.Context, repoPath string) (*inventory.Inventory, error) {
	log := logging.Ctx(ctx)

	info, err := os.Stat(repoPath)
	if err != nil {
		return nil, errors.WrapIO("stat", repoPath, err)
	}
	if !info.IsDir() {
		return nil, errors.NewValidationError("repo", repoPath, "not a directory")
	}

	inv := inventory.New(repoPath)

	creditsInfo, err := credits.Detect(repoPath)
	if err != nil {
		return nil, err
	}
	inv.Credits = creditsInfo

	if err := s.walk(ctx, repoPath, inv, log); err != nil {
		return nil, err
	}

	sort.SliceStable(inv.VendoredCandidates, func(i, j int) bool {
		return inv.VendoredCandidates[i].Path < inv.VendoredCandidates[j].Path
	})
	sort.SliceStable(inv.AssetCandidates, func(i, j int) bool {
		return inv.AssetCandidates[i].Path < inv.AssetCandidates[j].Path
	})
	sort.Strings(inv.FrozenRequirements)

	if s.extractLicenses {
		s.extractVendoredLicenses(repoPath, inv, log)
	}
	if s.registry != nil {
		s.lookupRegistry(ctx, inv, log)
	}

	log.Debug().
		Int("dependencies", len(inv.Dependencies)).
		Int("vendored", len(inv.VendoredCandidates)).
		Int("assets", len(inv.AssetCandidates)).
		Msg("scan complete")

	return inv, nil
}

// walk visits every file under repoPath, collecting manifests, vendored
// candidates, and asset candidates in a single pass.
func (s *Scanner) walk(ctx context.Context, repoPath string, inv *inventory.Inventory, log *zerolog.Logger) error {
	// Vendored candidates indexed by path, so license files found
	// underneath can be attached as the walk proceeds.
	candidates := make(map[string]*inventory.VendoredCandidate)

	err := godirwalk.Walk(repoPath, &godirwalk.Options{
		Callback: func(osPath string, de *godirwalk.Dirent) error {
			if err := ctx.Err(); err != nil {
				return err
			}

			rel, err := filepath.Rel(repoPath, osPath)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)
			if rel == "." {
				return nil
			}
			name := de.Name()

			if de.IsDir() {
				if isSkippedDir(name) {
					return filepath.SkipDir
				}
				if s.vendorNames[strings.ToLower(name)] && pathDepth(rel) <= maxVendorDepth {
					candidates[rel] = &inventory.VendoredCandidate{
						Path:          rel,
						Reason:        "directory name matches a vendoring convention",
						VendorPattern: true,
					}
				}
				return nil
			}

			s.visitFile(osPath, rel, name, inv, candidates, log)
			return nil
		},
		ErrorCallback: func(osPath string, err error) godirwalk.ErrorAction {
			// Errors returned by the Callback land here too; a done
			// context must abort the walk, not skip a node.
			if ctx.Err() != nil {
				return godirwalk.Halt
			}
			log.Warn().Err(err).Str("path", osPath).Msg("skipping unreadable path")
			return godirwalk.SkipNode
		},
		Unsorted: false,
	})
	if err != nil {
		return errors.WrapIO("walk", repoPath, err)
	}

	for _, c := range candidates {
		sort.Strings(c.LicenseFiles)
		inv.VendoredCandidates = append(inv.VendoredCandidates, *c)
	}
	return nil
}

// visitFile handles a single regular file during the walk.
func (s *Scanner) visitFile(osPath, rel, name string, inv *inventory.Inventory, candidates map[string]*inventory.VendoredCandidate, log *zerolog.Logger) {
	lower := strings.ToLower(name)
	depth := pathDepth(rel)

	switch {
	case isRequirementsFile(lower):
		deps, err := ParseRequirementsFile(osPath, rel)
		if err != nil {
			log.Warn().Err(err).Str("path", rel).Msg("skipping unparsable requirements file")
			return
		}
		inv.Dependencies = append(inv.Dependencies, deps...)
		if strings.Contains(lower, "frozen") || strings.Contains(lower, "freeze") {
			inv.FrozenRequirements = append(inv.FrozenRequirements, rel)
		}

	case lower == "pyproject.toml":
		deps, err := ParsePyprojectFile(osPath, rel)
		if err != nil {
			log.Warn().Err(err).Str("path", rel).Msg("skipping unparsable pyproject")
			return
		}
		inv.Dependencies = append(inv.Dependencies, deps...)

	case lower == "setup.py":
		deps, err := ParseSetupPyFile(osPath, rel)
		if err != nil {
			log.Warn().Err(err).Str("path", rel).Msg("skipping unparsable setup.py")
			return
		}
		inv.Dependencies = append(inv.Dependencies, deps...)

	case license.IsLicenseFile(name):
		dir := parentDir(rel)
		if dir == "" {
			// The repository's own license.
			return
		}
		if owner := owningCandidate(dir, candidates); owner != nil {
			owner.LicenseFiles = append(owner.LicenseFiles, rel)
		} else if depth >= 2 && depth <= maxVendorDepth+1 {
			candidates[dir] = &inventory.VendoredCandidate{
				Path:         dir,
				Reason:       "directory ships its own license file",
				LicenseFiles: []string{rel},
			}
		}

	case isArchiveName(name) && depth <= 2:
		inv.VendoredCandidates = append(inv.VendoredCandidates, inventory.VendoredCandidate{
			Path:   rel,
			Reason: "bundled archive",
		})

	default:
		if asset, ok := classifyAsset(rel, fileSize(osPath)); ok {
			inv.AssetCandidates = append(inv.AssetCandidates, asset)
		}
	}
}

// extractVendoredLicenses classifies the first license file of each
// vendored candidate.
func (s *Scanner) extractVendoredLicenses(repoPath string, inv *inventory.Inventory, log *zerolog.Logger) {
	for i := range inv.VendoredCandidates {
		c := &inv.VendoredCandidates[i]
		if len(c.LicenseFiles) == 0 {
			continue
		}
		info, err := license.ExtractFile(filepath.Join(repoPath, filepath.FromSlash(c.LicenseFiles[0])))
		if err != nil {
			log.Warn().Err(err).Str("path", c.LicenseFiles[0]).Msg("license extraction failed")
			continue
		}
		info.FilePath = c.LicenseFiles[0]
		c.License = info
	}
}

// lookupRegistry enriches declared dependencies with registry metadata.
// A failed lookup leaves the dependency as scanned.
func (s *Scanner) lookupRegistry(ctx context.Context, inv *inventory.Inventory, log *zerolog.Logger) {
	for i := range inv.Dependencies {
		dep := &inv.Dependencies[i]
		info, err := s.registry.Lookup(ctx, dep.Name, dep.VersionSpec)
		if err != nil {
			if errors.IsNotFound(err) {
				log.Debug().Str("package", dep.Name).Msg("package not in registry")
			} else {
				log.Warn().Err(err).Str("package", dep.Name).Msg("registry lookup failed")
			}
			continue
		}
		dep.Registry = info
	}
}

// isRequirementsFile matches requirements.txt and its common variants
// (requirements-dev.txt, frozen_requirements.txt, dev-requirements.txt).
func isRequirementsFile(lower string) bool {
	return strings.HasSuffix(lower, ".txt") && strings.Contains(lower, "requirements")
}

// parentDir returns the slash-separated parent of a relative path, or
// "" for a root-level entry.
func parentDir(rel string) string {
	if i := strings.LastIndex(rel, "/"); i >= 0 {
		return rel[:i]
	}
	return ""
}

// owningCandidate finds the closest recorded vendored candidate that
// contains dir, walking up the path.
func owningCandidate(dir string, candidates map[string]*inventory.VendoredCandidate) *inventory.VendoredCandidate {
	for d := dir; d != ""; d = parentDir(d) {
		if c, ok := candidates[d]; ok {
			return c
		}
	}
	return nil
}

func fileSize(osPath string) int64 {
	info, err := os.Stat(osPath)
	if err != nil {
		return 0
	}
	return info.Size()
}
