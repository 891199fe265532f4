package scan

import (
	"path"
	"strings"

	"github.com/credtally/credtally/pkg/inventory"
)

// Size floors below which js/css files are assumed to be first-party.
// Minified third-party bundles are rarely small.
const (
	minJSAssetSize  = 50 * 1024
	minCSSAssetSize = 30 * 1024
)

// fontExtensions mark font files, which are third-party in practice.
var fontExtensions = map[string]bool{
	".ttf":   true,
	".otf":   true,
	".woff":  true,
	".woff2": true,
	".eot":   true,
}

// knownAssetNames are file name fragments of widely bundled libraries.
var knownAssetNames = []string{
	"jquery", "bootstrap", "moment", "lodash", "underscore", "d3",
	"angular", "react", "vue", "backbone", "highlight", "prism",
	"font-awesome", "fontawesome", "normalize", "modernizr", "popper",
	"chart", "three", "codemirror", "ace", "tinymce", "select2",
}

// classifyAsset decides whether a file looks like a bundled third-party
// asset. relPath is slash separated and size is the file size in bytes.
func classifyAsset(relPath string, size int64) (inventory.AssetCandidate, bool) {
	name := strings.ToLower(path.Base(relPath))
	ext := path.Ext(name)

	if fontExtensions[ext] {
		return inventory.AssetCandidate{
			Path:   relPath,
			Type:   inventory.AssetFont,
			Reason: "font file",
		}, true
	}

	var assetType inventory.AssetType
	var minSize int64
	switch ext {
	case ".js":
		assetType, minSize = inventory.AssetJS, minJSAssetSize
	case ".css":
		assetType, minSize = inventory.AssetCSS, minCSSAssetSize
	default:
		return inventory.AssetCandidate{}, false
	}

	for _, known := range knownAssetNames {
		if strings.Contains(name, known) {
			return inventory.AssetCandidate{
				Path:   relPath,
				Type:   assetType,
				Reason: "matches known library name " + known,
			}, true
		}
	}

	if strings.Contains(name, ".min.") {
		return inventory.AssetCandidate{
			Path:   relPath,
			Type:   assetType,
			Reason: "minified bundle",
		}, true
	}

	if underVendorDir(relPath) {
		return inventory.AssetCandidate{
			Path:   relPath,
			Type:   assetType,
			Reason: "inside a vendor directory",
		}, true
	}

	if size >= minSize {
		return inventory.AssetCandidate{
			Path:   relPath,
			Type:   assetType,
			Reason: "unusually large for first-party code",
		}, true
	}

	return inventory.AssetCandidate{}, false
}
