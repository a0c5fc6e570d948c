// Package version reports the build's version and commit.
//
// Release builds set both through ldflags:
//
//	go build -ldflags="-X github.com/muurk/contactform/internal/version.Version=v1.2.3 \
//	                   -X github.com/muurk/contactform/internal/version.Commit=abc123"
//
// Other builds fall back to the VCS stamp Go embeds, then to "dev".
package version

import (
	"fmt"
	"runtime/debug"
	"time"
)

var (
	Version = ""
	Commit  = ""
)

func init() {
	vcs := readVCS()
	if Commit == "" {
		Commit = vcs.commit()
	}
	if Version == "" {
		Version = vcs.version()
	}
}

type vcsStamp struct {
	revision string
	modified bool
	time     time.Time
}

func readVCS() vcsStamp {
	var v vcsStamp
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return v
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			v.revision = s.Value
		case "vcs.modified":
			v.modified = s.Value == "true"
		case "vcs.time":
			v.time, _ = time.Parse(time.RFC3339, s.Value)
		}
	}
	return v
}

func (v vcsStamp) commit() string {
	if v.revision == "" {
		return "unknown"
	}
	c := v.revision
	if len(c) > 7 {
		c = c[:7]
	}
	if v.modified {
		c += "-dirty"
	}
	return c
}

// version has no tag to go on, so builds are named after the commit date.
func (v vcsStamp) version() string {
	if v.time.IsZero() {
		return "dev"
	}
	return "dev-" + v.time.UTC().Format("20060102")
}

// Full returns the version with its commit.
func Full() string {
	return fmt.Sprintf("%s (commit: %s)", Version, Commit)
}

// UserAgent is the User-Agent the submission client sends by default.
func UserAgent() string {
	return "contactform/" + Version
}
