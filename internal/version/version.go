// Package version carries the build identity of the client and the server
// API range it speaks.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

// Overridable at release time via -ldflags; dev builds fall back to the Go
// build metadata.
var (
	Version  = "0.3.0-dev"
	Revision = "unknown"
)

// Oldest server API version this client accepts during the compatibility
// probe.
const (
	APIVersionMajor = 2019
	APIVersionMinor = 4
)

func init() {
	if info, ok := debug.ReadBuildInfo(); ok {
		resolve(info)
	}
}

// resolve fills Version and Revision from Go build metadata when ldflags
// left the defaults in place.
func resolve(info *debug.BuildInfo) {
	if Version == "0.3.0-dev" {
		if v := strings.TrimPrefix(info.Main.Version, "v"); v != "" && v != "(devel)" {
			Version = v
		}
	}

	if Revision != "unknown" {
		return
	}
	revision, dirty := "", false
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if revision == "" {
		return
	}
	if dirty {
		revision += "-dirty"
	}
	Revision = revision
}

// Detailed returns the full version line shown by `mergin --version`, e.g.
// `0.3.0 (5e23a4; go1.23.6; linux/amd64)`.
func Detailed() string {
	return fmt.Sprintf("%s (%s; %s; %s/%s)", Version, Revision, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
