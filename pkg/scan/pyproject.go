package scan

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/credtally/credtally/pkg/errors"
	"github.com/credtally/credtally/pkg/inventory"
)

// pyprojectFile is the subset of pyproject.toml the scanner reads.
type pyprojectFile struct {
	Project struct {
		Dependencies         []string            `toml:"dependencies"`
		OptionalDependencies map[string][]string `toml:"optional-dependencies"`
	} `toml:"project"`
	Tool struct {
		Poetry struct {
			Dependencies map[string]any `toml:"dependencies"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

// ParsePyprojectFile extracts declared dependencies from a
// pyproject.toml, covering both PEP 621 project tables and Poetry's
// tool table. Poetry's mandatory "python" entry is not a dependency.
func ParsePyprojectFile(path, relPath string) ([]inventory.Dependency, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	var file pyprojectFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, errors.WrapParse("toml", path, err)
	}

	var deps []inventory.Dependency

	for _, req := range file.Project.Dependencies {
		if dep, ok := requirementDependency(req, relPath+":project.dependencies"); ok {
			deps = append(deps, dep)
		}
	}

	groups := make([]string, 0, len(file.Project.OptionalDependencies))
	for group := range file.Project.OptionalDependencies {
		groups = append(groups, group)
	}
	sort.Strings(groups)
	for _, group := range groups {
		source := fmt.Sprintf("%s:project.optional-dependencies.%s", relPath, group)
		for _, req := range file.Project.OptionalDependencies[group] {
			if dep, ok := requirementDependency(req, source); ok {
				deps = append(deps, dep)
			}
		}
	}

	names := make([]string, 0, len(file.Tool.Poetry.Dependencies))
	for name := range file.Tool.Poetry.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if strings.EqualFold(name, "python") {
			continue
		}
		deps = append(deps, inventory.Dependency{
			Source:      relPath + ":tool.poetry.dependencies",
			Name:        name,
			VersionSpec: poetryVersionSpec(file.Tool.Poetry.Dependencies[name]),
			RawLine:     name,
		})
	}

	return deps, nil
}

// requirementDependency converts a PEP 508 requirement string into a
// dependency, reusing the requirements.txt splitting rules.
func requirementDependency(req, source string) (inventory.Dependency, bool) {
	name, spec := splitRequirement(strings.TrimSpace(req))
	if name == "" {
		return inventory.Dependency{}, false
	}
	return inventory.Dependency{
		Source:      source,
		Name:        name,
		VersionSpec: spec,
		RawLine:     req,
	}, true
}

// poetryVersionSpec renders a Poetry dependency value as a version
// spec. Values are either a constraint string or a table whose version
// key holds the constraint.
func poetryVersionSpec(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case map[string]any:
		if version, ok := v["version"].(string); ok {
			return version
		}
	}
	return inventory.VersionUnknown
}

// installRequires matches the install_requires list in a setup.py.
var installRequires = regexp.MustCompile(`(?s)install_requires\s*=\s*\[(.*?)\]`)

// quotedString matches a single- or double-quoted string literal.
var quotedString = regexp.MustCompile(`['"]([^'"]+)['"]`)

// ParseSetupPyFile extracts install_requires entries from a setup.py
// with a regular expression. It is a heuristic: a setup.py that builds
// its requirement list programmatically yields nothing, which is fine
// for an advisory scan.
func ParseSetupPyFile(path, relPath string) ([]inventory.Dependency, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	m := installRequires.FindSubmatch(data)
	if m == nil {
		return nil, nil
	}

	var deps []inventory.Dependency
	for _, q := range quotedString.FindAllSubmatch(m[1], -1) {
		if dep, ok := requirementDependency(string(q[1]), relPath+":install_requires"); ok {
			deps = append(deps, dep)
		}
	}
	return deps, nil
}
