// Package credits detects and parses software_credits attribution files.
//
// A software_credits file is free text: an optional header paragraph
// followed by one section per third-party component, each introduced by
// a marker line of the form:
//
//	=== Component Name (https://example.com) ======================
//
// The parser splits the file into per-component records that preserve
// the original text block for traceability.
package credits

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/credtally/credtally/pkg/errors"
	"github.com/credtally/credtally/pkg/inventory"
)

// FileName is the conventional name of the attribution file at the
// repository root.
const FileName = "software_credits"

// placeholderPhrase marks a stub credits file declaring no third parties.
const placeholderPhrase = "does not include any third"

// sectionHeader matches "=== Name (URL) ===" marker lines.
var sectionHeader = regexp.MustCompile(`^=+\s*(.+?)\s*\(([^)]+)\)\s*=+`)

// trailingVersion matches a version token at the end of a component name,
// e.g. "PyYAML 5.4.1" or "jQuery v3.6".
var trailingVersion = regexp.MustCompile(`^(.*?)\s+v?(\d+(?:\.\d+)+)$`)

// Record is a single documented component parsed from a credits file.
type Record struct {
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version" yaml:"version"` // "unknown" when the section does not state one
	URL     string `json:"url,omitempty" yaml:"url,omitempty"`
	RawText string `json:"raw_text,omitempty" yaml:"raw_text,omitempty"` // Original section body, for traceability
}

// File is a parsed software_credits file.
type File struct {
	Header  string   `json:"header,omitempty" yaml:"header,omitempty"` // Text before the first section marker
	Records []Record `json:"components" yaml:"components"`
}

// Detect checks for a software_credits file at the repository root and
// reports its basic shape. A file with at most three non-empty lines
// containing the "does not include any third" phrase is treated as the
// placeholder for repositories without third-party components.
func Detect(repoRoot string) (*inventory.CreditsInfo, error) {
	creditsPath := filepath.Join(repoRoot, FileName)

	data, err := os.ReadFile(creditsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &inventory.CreditsInfo{Exists: false}, nil
		}
		return nil, errors.WrapIO("read", creditsPath, err)
	}

	content := string(data)
	lineCount := 0
	for _, line := range strings.Split(strings.TrimSpace(content), "\n") {
		if strings.TrimSpace(line) != "" {
			lineCount++
		}
	}

	return &inventory.CreditsInfo{
		Exists:      true,
		Path:        FileName,
		Placeholder: lineCount <= 3 && strings.Contains(strings.ToLower(content), placeholderPhrase),
		LineCount:   lineCount,
	}, nil
}

// ParseFile parses the software_credits file at the given path.
func ParseFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer f.Close()

	parsed, err := Parse(f)
	if err != nil {
		return nil, errors.WrapParse("credits", path, err)
	}
	return parsed, nil
}

// Parse reads a credits file and splits it into per-component records.
// Everything before the first section marker is the header. A marker
// line without the "Name (URL)" shape falls back to the text between
// the "=" runs as the component name.
func Parse(r io.Reader) (*File, error) {
	var (
		file       File
		header     []string
		inHeader   = true
		current    *Record
		body       strings.Builder
		rawVersion string
	)

	flush := func() {
		if current == nil {
			return
		}
		current.RawText = strings.TrimRight(body.String(), "\n")
		if rawVersion != "" {
			current.Version = rawVersion
		} else {
			current.Version = inventory.VersionUnknown
		}
		file.Records = append(file.Records, *current)
		current = nil
		body.Reset()
		rawVersion = ""
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasPrefix(line, "==") {
			inHeader = false
			flush()

			name, url := parseSectionHeader(line)
			name, rawVersion = splitTrailingVersion(name)
			current = &Record{Name: name, URL: url}
			continue
		}

		if inHeader {
			header = append(header, line)
		} else if current != nil {
			body.WriteString(line)
			body.WriteString("\n")
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()

	file.Header = strings.TrimSpace(strings.Join(header, "\n"))
	return &file, nil
}

// parseSectionHeader extracts the component name and URL from a marker line.
func parseSectionHeader(line string) (name, url string) {
	if m := sectionHeader.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	}
	return strings.Trim(line, "= "), ""
}

// splitTrailingVersion splits a trailing version token off a component
// name, so "PyYAML 5.4.1" yields ("PyYAML", "5.4.1"). Names without a
// version token pass through unchanged.
func splitTrailingVersion(name string) (string, string) {
	if m := trailingVersion.FindStringSubmatch(name); m != nil {
		return strings.TrimSpace(m[1]), m[2]
	}
	return name, ""
}
