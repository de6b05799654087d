// Package version reports the wikilink build version.
package version

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// Set at build time with -ldflags "-X github.com/rshade/wikilink/pkg/version.version=v1.2.3".
var (
	version = "0.0.0-dev" //nolint:gochecknoglobals // ldflags target
	commit  = "unknown"   //nolint:gochecknoglobals // ldflags target
)

// GetVersion returns the normalized semantic version of this build, without a
// leading "v". Unparseable build values are returned unchanged.
func GetVersion() string {
	v, err := semver.NewVersion(version)
	if err != nil {
		return version
	}
	return v.String()
}

// GetCommit returns the VCS revision the binary was built from.
func GetCommit() string {
	return commit
}

// IsRelease reports whether the build carries a release version
// (no prerelease suffix).
func IsRelease() bool {
	v, err := semver.NewVersion(version)
	return err == nil && v.Prerelease() == ""
}

// UserAgent returns the User-Agent the SPARQL client sends by default,
// following the Wikimedia policy of naming the tool and a contact URL.
func UserAgent() string {
	return fmt.Sprintf("wikilink/%s (https://github.com/rshade/wikilink)", GetVersion())
}
