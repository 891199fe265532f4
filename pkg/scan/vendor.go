package scan

import (
	"path"
	"strings"
)

// vendorDirNames are directory names that conventionally hold vendored
// third-party code.
var vendorDirNames = map[string]bool{
	"vendor":      true,
	"vendors":     true,
	"vendored":    true,
	"third_party": true,
	"thirdparty":  true,
	"third-party": true,
	"3rdparty":    true,
	"3rd_party":   true,
	"externals":   true,
	"external":    true,
	"libs":        true,
	"deps":        true,
}

// skipDirNames are directories the walk never descends into: caches,
// build output, and virtual environments. Hidden directories are
// skipped wholesale, so dot names need no entries here.
var skipDirNames = map[string]bool{
	"__pycache__":  true,
	"node_modules": true,
	"venv":         true,
	"env":          true,
	"build":        true,
	"dist":         true,
}

// maxVendorDepth caps how deep vendored-candidate detection looks. A
// vendor directory nested deeper than this is someone else's vendoring.
const maxVendorDepth = 5

// isVendorDirName reports whether a directory name conventionally holds
// vendored code.
func isVendorDirName(name string) bool {
	return vendorDirNames[strings.ToLower(name)]
}

// isSkippedDir reports whether the walk should skip a directory
// entirely.
func isSkippedDir(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	if skipDirNames[name] {
		return true
	}
	// Egg-info and similar build metadata directories.
	return strings.HasSuffix(name, ".egg-info")
}

// pathDepth counts the path segments in a slash-separated relative
// path.
func pathDepth(relPath string) int {
	if relPath == "" || relPath == "." {
		return 0
	}
	return strings.Count(relPath, "/") + 1
}

// underVendorDir reports whether any segment of a slash-separated
// relative path is a vendor directory name.
func underVendorDir(relPath string) bool {
	for _, segment := range strings.Split(relPath, "/") {
		if isVendorDirName(segment) {
			return true
		}
	}
	return false
}

// isArchiveName reports whether a file name looks like a bundled
// source or binary archive.
func isArchiveName(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".zip", ".tar", ".gz", ".tgz", ".whl", ".jar":
		return true
	}
	return false
}
