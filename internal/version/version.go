// Package version holds the build identity of the sysyc CLI. The variables
// can be overridden at build time via -ldflags.
package version

import (
	"strings"

	"github.com/fatih/color"
)

var (
	// Version is the semantic version of the toolchain. It feeds cache keys
	// and manifest toolchain checks, so it must stay plain semver.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var (
	majorColor = color.New(color.FgYellow, color.Bold)
	minorColor = color.New(color.FgGreen, color.Bold)
	patchColor = color.New(color.FgBlue, color.Bold)
)

// Info is the machine-readable build identity.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
}

func Current() Info {
	return Info{Version: Version, GitCommit: GitCommit, BuildDate: BuildDate}
}

// Colored renders Version with one colour per numeric component. The
// pre-release suffix stays uncoloured.
func Colored(enabled bool) string {
	core, suffix, hasSuffix := strings.Cut(Version, "-")
	parts := strings.SplitN(core, ".", 3)
	if len(parts) != 3 {
		return Version
	}
	colors := []*color.Color{majorColor, minorColor, patchColor}
	for i, c := range colors {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		parts[i] = c.Sprint(parts[i])
	}
	out := strings.Join(parts, ".")
	if hasSuffix {
		out += "-" + suffix
	}
	return out
}
