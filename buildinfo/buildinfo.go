// Package buildinfo reports the VCS state a binary was built from.
package buildinfo

import (
	"fmt"
	"os"
	"runtime/debug"
)

type BuildInfo struct {
	Module       string
	GoVersion    string
	Revision     string
	RevisionTime string
	Dirty        bool
}

func (b BuildInfo) String() string {
	dirty := ""
	if b.Dirty {
		dirty = " The working tree was dirty at build time."
	}

	return fmt.Sprintf("This %s binary was built with %s at revision %v (%v).%s", b.Module, b.GoVersion, b.Revision, b.RevisionTime, dirty)
}

func Get() BuildInfo {
	out := BuildInfo{}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return out
	}

	out.GoVersion = bi.GoVersion
	out.Module = bi.Path
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			out.Revision = s.Value
		case "vcs.time":
			out.RevisionTime = s.Value
		case "vcs.modified":
			out.Dirty = s.Value == "true"
		}
	}

	return out
}

func PrintToStdErr() {
	fmt.Fprintf(os.Stderr, "%s\n", Get())
}
