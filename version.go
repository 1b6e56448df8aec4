package l10ncache

// Version information for l10ncache.
// These values can be overridden at build time using ldflags:
//
//	go build -ldflags "-X github.com/ZaguanLabs/l10ncache.GitCommit=$(git rev-parse HEAD)"
const (
	// Name is the application name.
	Name = "l10ncache"

	// Description is a short description of the application.
	Description = "Translation catalog cache for gettext .mo and script JSON files"

	// Version is the semantic version of the application.
	Version = "0.2.1"

	// Repository is the source code repository URL.
	Repository = "https://github.com/ZaguanLabs/l10ncache"

	// License is the software license.
	License = "MIT"
)

// BuildInfo contains build-time information.
// These are typically set via ldflags during build.
var (
	// GitCommit is the git commit hash.
	GitCommit = "unknown"

	// BuildDate is the build timestamp.
	BuildDate = "unknown"
)

// FullVersion returns the version string with optional build info.
func FullVersion() string {
	v := Version
	if GitCommit != "unknown" && GitCommit != "" {
		short := GitCommit
		if len(short) > 7 {
			short = short[:7]
		}
		v += "+" + short
	}
	return v
}
