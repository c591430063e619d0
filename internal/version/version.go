// Package version provides build-time version information for the application.
package version

// Set with -ldflags "-X feedbackapp/internal/version.Version=..." at build time.
var (
	// Version is the application version (e.g., git tag or "dev")
	Version = "dev"
	// Commit is the git commit hash
	Commit = "dev"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)

// BuildInfo identifies a running binary. It is served by GET /api/version and printed by the CLIs.
type BuildInfo struct {
	Service   string `json:"service"`
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
}

// Info returns the build information for service.
func Info(service string) BuildInfo {
	return BuildInfo{
		Service:   service,
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
	}
}

// String renders the build information on one line.
func (b BuildInfo) String() string {
	return b.Service + " " + b.Version + " (commit " + b.Commit + ", built " + b.BuildTime + ")"
}
