// Package version holds build metadata injected through ldflags.
package version

import (
	"fmt"
	"runtime"
	"strings"
)

var (
	// Version is the application version, set via ldflags during build.
	Version = "dev"
	// GitCommit is the git commit hash, set via ldflags during build.
	GitCommit = "unknown"
	// BuildDate is the build timestamp, set via ldflags during build.
	BuildDate = "unknown"
	// BuildID is the build identifier, set via ldflags during build.
	BuildID = "unknown"
)

const shortCommitLen = 7

// Info contains version and build metadata.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	BuildID   string `json:"build_id"`
	GoVersion string `json:"go_version"`
	Compiler  string `json:"compiler"`
	Platform  string `json:"platform"`
}

// Get returns version and build information.
func Get() Info {
	return Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		BuildID:   BuildID,
		GoVersion: runtime.Version(),
		Compiler:  runtime.Compiler,
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// ShortCommit returns the abbreviated commit hash, or "" when unknown.
func (i Info) ShortCommit() string {
	if i.GitCommit == "" || i.GitCommit == "unknown" {
		return ""
	}
	if len(i.GitCommit) > shortCommitLen {
		return i.GitCommit[:shortCommitLen]
	}
	return i.GitCommit
}

// String formats the info for --version output, e.g.
// "1.2.0 (abc1234, 2026-01-02) go1.24.11 linux/arm64".
func (i Info) String() string {
	var details []string
	if c := i.ShortCommit(); c != "" {
		details = append(details, c)
	}
	if i.BuildDate != "" && i.BuildDate != "unknown" {
		details = append(details, i.BuildDate)
	}

	s := i.Version
	if len(details) > 0 {
		s += " (" + strings.Join(details, ", ") + ")"
	}
	return s + " " + i.GoVersion + " " + i.Platform
}
