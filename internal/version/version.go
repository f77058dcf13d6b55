package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"time"
)

// Set at build time via ldflags:
//
//	go build -ldflags="-X github.com/muurk/sidbridge/internal/version.Version=v0.3.0 \
//	                   -X github.com/muurk/sidbridge/internal/version.Commit=abc1234"
//
// Unset values are filled from the module build info, then fall back to
// "dev" and "unknown".
var (
	// Version is the release version of sidbridge
	Version = ""
	// Commit is the short git commit hash
	Commit = ""
	// BuildDate is the VCS commit time, when known
	BuildDate = ""
)

func init() {
	if info, ok := debug.ReadBuildInfo(); ok {
		fillFromBuildInfo(info)
	}
	if Version == "" {
		Version = "dev"
	}
	if Commit == "" {
		Commit = "unknown"
	}
}

// fillFromBuildInfo sets any unset variable from the module and VCS stamps
func fillFromBuildInfo(info *debug.BuildInfo) {
	settings := make(map[string]string, len(info.Settings))
	for _, s := range info.Settings {
		settings[s.Key] = s.Value
	}

	if Commit == "" {
		if rev := settings["vcs.revision"]; rev != "" {
			if len(rev) > 7 {
				rev = rev[:7]
			}
			if settings["vcs.modified"] == "true" {
				rev += "-dirty"
			}
			Commit = rev
		}
	}

	if BuildDate == "" {
		if t, err := time.Parse(time.RFC3339, settings["vcs.time"]); err == nil {
			BuildDate = t.UTC().Format("2006-01-02")
		}
	}

	// go install module@version stamps the main module version
	if Version == "" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}
}

// Full returns the version with commit and build date
func Full() string {
	s := fmt.Sprintf("%s (commit: %s", Version, Commit)
	if BuildDate != "" {
		s += ", built: " + BuildDate
	}
	return s + ")"
}

// Detailed returns a multi-line description for the version commands
func Detailed(program string) string {
	return fmt.Sprintf("%s %s\n  commit:  %s\n  go:      %s\n  os/arch: %s/%s\n",
		program, Version, Commit, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// UserAgent identifies program in HTTP and WebSocket requests
func UserAgent(program string) string {
	return program + "/" + Version
}
