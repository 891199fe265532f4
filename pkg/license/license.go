// Package license classifies license texts and extracts copyright
// statements from license files.
//
// Classification is pattern based: an SPDX-License-Identifier tag wins
// when present, otherwise the text is matched against characteristic
// phrases of the common open-source licenses. The result is an SPDX
// identifier, not a legal judgment.
package license

import (
	"os"
	"regexp"
	"strings"

	"github.com/credtally/credtally/pkg/errors"
	"github.com/credtally/credtally/pkg/inventory"
)

// maxTextLength caps the license text carried in an inventory so a
// single giant file cannot bloat the output.
const maxTextLength = 10000

// pattern pairs an SPDX identifier with phrases that identify the
// license. Every phrase must appear (case-insensitively) for the
// pattern to match. Order matters: more specific patterns come first.
type pattern struct {
	spdx    string
	phrases []string
}

var patterns = []pattern{
	{"Apache-2.0", []string{"apache license", "version 2.0"}},
	{"LGPL-3.0", []string{"gnu lesser general public license", "version 3"}},
	{"LGPL-2.1", []string{"gnu lesser general public license", "version 2.1"}},
	{"GPL-3.0", []string{"gnu general public license", "version 3"}},
	{"GPL-2.0", []string{"gnu general public license", "version 2"}},
	{"MPL-2.0", []string{"mozilla public license", "2.0"}},
	{"BSD-3-Clause", []string{"redistribution and use", "neither the name"}},
	{"BSD-2-Clause", []string{"redistribution and use", "binary forms"}},
	{"ISC", []string{"permission to use, copy, modify, and/or distribute"}},
	{"PSF-2.0", []string{"python software foundation"}},
	{"MIT", []string{"permission is hereby granted, free of charge"}},
}

// spdxTag matches an explicit SPDX-License-Identifier declaration.
var spdxTag = regexp.MustCompile(`(?i)SPDX-License-Identifier:\s*([A-Za-z0-9.+-]+)`)

// copyrightLine matches copyright statements in their common spellings.
var copyrightLine = regexp.MustCompile(`(?im)^.*(?:copyright\s+(?:\(c\)|©|\d)|\(c\)\s+\d{4}).*$`)

// licenseFileName matches the conventional names of license files.
var licenseFileName = regexp.MustCompile(`(?i)^(licen[cs]e|copying|notice)([-._].*)?(\.(txt|md|rst))?$`)

// Classify returns the SPDX identifier for a license text, or "" when
// no known license is recognized. An SPDX-License-Identifier tag in the
// text takes precedence over phrase matching.
func Classify(text string) string {
	if m := spdxTag.FindStringSubmatch(text); m != nil {
		return m[1]
	}

	lower := strings.ToLower(text)
	for _, p := range patterns {
		matched := true
		for _, phrase := range p.phrases {
			if !strings.Contains(lower, phrase) {
				matched = false
				break
			}
		}
		if matched {
			return p.spdx
		}
	}
	return ""
}

// Copyrights extracts the distinct copyright statements from a license
// text, in order of first appearance.
func Copyrights(text string) []string {
	var (
		out  []string
		seen = map[string]bool{}
	)
	for _, line := range copyrightLine.FindAllString(text, -1) {
		line = strings.TrimSpace(line)
		if line == "" || seen[line] {
			continue
		}
		seen[line] = true
		out = append(out, line)
	}
	return out
}

// Extract classifies a license text and pulls out its copyright
// statements. The retained text is truncated to a fixed cap.
func Extract(text string) *inventory.LicenseInfo {
	info := &inventory.LicenseInfo{
		Type:       Classify(text),
		Copyrights: Copyrights(text),
	}
	if m := spdxTag.FindStringSubmatch(text); m != nil {
		info.SPDXID = m[1]
	}
	if len(text) > maxTextLength {
		text = text[:maxTextLength]
	}
	info.Text = text
	return info
}

// ExtractFile reads and classifies the license file at path. The
// FilePath on the result is the path as given, so callers pass
// repo-relative paths when building an inventory.
func ExtractFile(path string) (*inventory.LicenseInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	info := Extract(string(data))
	info.FilePath = path
	return info, nil
}

// IsLicenseFile reports whether a file name looks like a license file
// (LICENSE, LICENSE.txt, COPYING, NOTICE and variants).
func IsLicenseFile(name string) bool {
	return licenseFileName.MatchString(name)
}
