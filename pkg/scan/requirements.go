package scan

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/credtally/credtally/pkg/errors"
	"github.com/credtally/credtally/pkg/inventory"
)

// versionOperators are the PEP 440 comparison operators that separate a
// requirement name from its version specifier.
var versionOperators = []string{"===", "==", "~=", "!=", ">=", "<=", ">", "<"}

// ParseRequirementsFile parses a pip requirements file into declared
// dependencies. The source on each dependency is "<name>:<line>" using
// the file's base name as passed in relPath.
func ParseRequirementsFile(path, relPath string) ([]inventory.Dependency, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer f.Close()
	return parseRequirements(f, relPath)
}

// parseRequirements reads a requirements file line by line. Option
// lines (-r, --index-url and friends) are skipped, editable and VCS
// installs contribute their egg or repository name, and environment
// markers and extras are stripped from plain requirement lines.
func parseRequirements(r io.Reader, relPath string) ([]inventory.Dependency, error) {
	var deps []inventory.Dependency

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()
		line := strings.TrimSpace(raw)

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		// Inline comments need a preceding space to avoid splitting
		// URLs containing "#egg=".
		if i := strings.Index(line, " #"); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		if line == "" {
			continue
		}

		source := fmt.Sprintf("%s:%d", relPath, lineNo)

		if strings.HasPrefix(line, "-") {
			// Editable installs still name a package; every other
			// option line configures pip rather than declaring one.
			if strings.HasPrefix(line, "-e ") || strings.HasPrefix(line, "--editable ") {
				target := strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(line, "--editable "), "-e "))
				if name := vcsRequirementName(target); name != "" {
					deps = append(deps, inventory.Dependency{
						Source:      source,
						Name:        name,
						VersionSpec: inventory.VersionUnknown,
						RawLine:     raw,
					})
				}
			}
			continue
		}

		if isVCSRequirement(line) {
			if name := vcsRequirementName(line); name != "" {
				deps = append(deps, inventory.Dependency{
					Source:      source,
					Name:        name,
					VersionSpec: inventory.VersionUnknown,
					RawLine:     raw,
				})
			}
			continue
		}

		name, spec := splitRequirement(line)
		if name == "" {
			continue
		}
		deps = append(deps, inventory.Dependency{
			Source:      source,
			Name:        name,
			VersionSpec: spec,
			RawLine:     raw,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return deps, nil
}

// splitRequirement splits "name[extras]==1.2; marker" into the bare
// name and its version specifier. A requirement without an operator
// reports an unknown version.
func splitRequirement(line string) (name, spec string) {
	// Environment markers follow a semicolon.
	if i := strings.Index(line, ";"); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}

	name = line
	spec = inventory.VersionUnknown
	opIdx := -1
	for _, op := range versionOperators {
		if i := strings.Index(line, op); i >= 0 && (opIdx < 0 || i < opIdx) {
			opIdx = i
		}
	}
	if opIdx >= 0 {
		name = strings.TrimSpace(line[:opIdx])
		spec = strings.ReplaceAll(strings.TrimSpace(line[opIdx:]), " ", "")
	}

	// Extras do not change the distribution name.
	if i := strings.Index(name, "["); i >= 0 {
		name = name[:i]
	}
	return strings.TrimSpace(name), spec
}

// isVCSRequirement reports whether a requirement line is a direct VCS
// or URL install.
func isVCSRequirement(line string) bool {
	for _, prefix := range []string{"git+", "hg+", "svn+", "bzr+", "http://", "https://", "file://"} {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

// vcsRequirementName extracts the package name from a VCS requirement,
// preferring the #egg= fragment and falling back to the repository
// basename.
func vcsRequirementName(target string) string {
	if i := strings.Index(target, "#egg="); i >= 0 {
		name := target[i+len("#egg="):]
		if j := strings.IndexAny(name, "&["); j >= 0 {
			name = name[:j]
		}
		return strings.TrimSpace(name)
	}

	trimmed := strings.TrimRight(target, "/")
	// Strip a trailing @ref, but not the @ in ssh-style user@host.
	if i := strings.LastIndex(trimmed, "@"); i > strings.LastIndex(trimmed, "/") {
		trimmed = trimmed[:i]
	}
	trimmed = strings.TrimSuffix(trimmed, ".git")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		trimmed = trimmed[i+1:]
	}
	if strings.Contains(trimmed, "://") || trimmed == "." || trimmed == ".." {
		return ""
	}
	return trimmed
}
