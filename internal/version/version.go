// Package version holds build fingerprints of the busindex binary.
package version

import (
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/fatih/color"
)

// These variables can be overridden at build time via -ldflags "-X".
var (
	// Version is the semantic version of the CLI.
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
	dimColor   = color.New(color.Faint)
)

// Generator names the tool in generated artifacts, e.g. "busindex 0.1.0".
func Generator() string {
	return "busindex " + Version
}

// Commit returns GitCommit, or the VCS revision embedded by the go command.
func Commit() string {
	if GitCommit != "" {
		return GitCommit
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" {
			return s.Value
		}
	}
	return ""
}

// Colored renders Version with each numeric part colored. Coloring follows
// color.NoColor, so it degrades to plain text off a terminal.
func Colored() string {
	core, suffix, hasSuffix := strings.Cut(Version, "-")
	parts := strings.SplitN(core, ".", 3)
	if len(parts) != 3 {
		return Version
	}
	out := majorColor.Sprint(parts[0]) + "." + minorColor.Sprint(parts[1]) + "." + patchColor.Sprint(parts[2])
	if hasSuffix {
		out += "-" + suffix
	}
	return out
}

// Fingerprint is the multi-line text printed by `busindex version`.
func Fingerprint(colored bool) string {
	v := Version
	if colored {
		v = Colored()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "busindex %s\n", v)
	if c := Commit(); c != "" {
		if len(c) > 12 {
			c = c[:12]
		}
		fmt.Fprintf(&sb, "commit: %s\n", dim(colored, c))
	}
	if BuildDate != "" {
		fmt.Fprintf(&sb, "built:  %s\n", dim(colored, BuildDate))
	}
	return sb.String()
}

func dim(colored bool, s string) string {
	if !colored {
		return s
	}
	return dimColor.Sprint(s)
}
