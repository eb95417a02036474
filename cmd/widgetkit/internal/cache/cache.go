// Package cache resolves the widgetkit cache directory.
//
// Priority order: --cache-dir flag > WIDGETKIT_CACHE_DIR env > ~/.widgetkit default.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/module"
	"golang.org/x/mod/semver"
)

// EnvCacheDir overrides the default cache root.
const EnvCacheDir = "WIDGETKIT_CACHE_DIR"

// DevVersion names the shared directory used by non-release builds.
const DevVersion = "dev"

var global struct {
	version    string
	rawVersion string
	cacheDir   string
}

// SetGlobal initializes the resolver with the CLI version. Called once at
// startup from the root command.
func SetGlobal(version string) {
	global.rawVersion = strings.TrimSpace(version)
	global.version = NormalizeVersion(version)
}

// NormalizeVersion returns a clean release version, or empty if the version
// is not a release (dev builds, pseudo-versions from go install).
// Explicit prerelease tags are allowed.
//
// Examples:
//
//	"v0.1.0"                          -> "v0.1.0"
//	"0.1.0"                           -> "v0.1.0"
//	"widgetkit-v0.1.0"                -> "v0.1.0"
//	"v0.2.0-rc1"                      -> "v0.2.0-rc1"
//	"v0.2.0+build.5"                  -> "v0.2.0"
//	"0.1.0-dev"                       -> ""
//	"v0.2.1-0.20260122153045-abc123"  -> ""
//	"v1.2"                            -> ""
func NormalizeVersion(version string) string {
	version = strings.TrimPrefix(strings.TrimSpace(version), "widgetkit-")
	if !strings.HasPrefix(version, "v") {
		version = "v" + version
	}
	if !semver.IsValid(version) || module.IsPseudoVersion(version) {
		return ""
	}
	if semver.Prerelease(version) == "-dev" {
		return ""
	}
	canonical := semver.Canonical(version)
	// Short forms like v1.2 canonicalize to v1.2.0; require all three parts.
	if strings.TrimSuffix(version, semver.Build(version)) != canonical {
		return ""
	}
	return canonical
}

// Version returns the normalized CLI version, or DevVersion.
func Version() string {
	if global.version != "" {
		return global.version
	}
	return DevVersion
}

// RawVersion returns the version string SetGlobal was called with.
func RawVersion() string { return global.rawVersion }

// SetCacheDir sets an override for the cache directory, typically from the
// --cache-dir flag.
func SetCacheDir(dir string) {
	global.cacheDir = dir
}

// Root returns the cache root directory.
func Root() (string, error) {
	if global.cacheDir != "" {
		return global.cacheDir, nil
	}

	if envDir := os.Getenv(EnvCacheDir); envDir != "" {
		return envDir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}

	return filepath.Join(home, ".widgetkit"), nil
}

// ImageDir returns the remote image cache directory.
// Returns: <cache_root>/images/<version>
//
// Releases get their own directory so a schema change never reads files
// written by another release. Non-release builds share images/dev.
func ImageDir() (string, error) {
	root, err := Root()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, "images", Version()), nil
}

// DataDir returns the default directory for the file and sqlite stores.
// Returns: <cache_root>/data
func DataDir() (string, error) {
	root, err := Root()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, "data"), nil
}
