package reconcile

import (
	"strings"

	"github.com/credtally/credtally/pkg/inventory"
)

// versionVerdict is the outcome of comparing a matched pair's versions.
type versionVerdict int

const (
	// versionsAgree covers equal tokens and pairs where either side has
	// no usable version. An unverifiable pair is not a discrepancy; the
	// reviewer still sees the match with its origin and raw text.
	versionsAgree versionVerdict = iota
	versionsDiffer
)

// versionToken strips comparison operator prefixes and surrounding
// whitespace from a version spec, leaving the bare token.
// "==5.4.1" becomes "5.4.1", ">= 2.0" becomes "2.0".
func versionToken(spec string) string {
	return strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(spec), "=<>!~^"))
}

// compareVersions decides whether a matched pair's version information
// agrees. Tokens are compared as case-insensitive strings, not parsed
// as semantic versions: whether "v1.2.3" equals "1.2.3.0" is
// deliberately left undecided, so only literal token equality counts.
func compareVersions(detectedSpec, documentedVersion string) versionVerdict {
	detected := versionToken(detectedSpec)
	documented := versionToken(documentedVersion)

	if detected == "" || strings.EqualFold(detected, inventory.VersionUnknown) {
		return versionsAgree
	}
	if documented == "" || strings.EqualFold(documented, inventory.VersionUnknown) {
		return versionsAgree
	}

	if strings.EqualFold(detected, documented) {
		return versionsAgree
	}
	return versionsDiffer
}
