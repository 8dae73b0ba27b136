// Package cli holds argument handling shared by the geoprof commands.
package cli

import (
	"os"
	"path/filepath"
	"strings"
)

// Legacy switches are slash tokens mixed in with the paths, matched
// case-insensitively.
const (
	SwitchKeepStore    = "/keepxbim"
	SwitchSingleThread = "/singlethread"
	SwitchSameFolder   = "/samefolder"
)

// Usage is printed when no model paths are given.
const Usage = "Usage: geoprof <model-file|directory>... [/keepXbim] [/singleThread] [/sameFolder]"

// Legacy is the set of slash switches found on the command line.
type Legacy struct {
	KeepStore    bool
	SingleThread bool
	SameFolder   bool
}

// Args is the result of SplitArgs.
type Args struct {
	Paths  []string
	Legacy Legacy
	// Ignored holds slash tokens that look like neither switches nor paths.
	Ignored []string
}

// SplitArgs separates legacy switches from model paths. A token starting with
// "/" that is not a known switch is an absolute path when it names a
// directory below the root, carries an extension, or exists on disk;
// anything else is ignored. A nil exists uses os.Stat.
func SplitArgs(args []string, exists func(string) bool) Args {
	if exists == nil {
		exists = func(p string) bool {
			_, err := os.Stat(p)
			return err == nil
		}
	}
	var out Args
	for _, a := range args {
		if !strings.HasPrefix(a, "/") {
			out.Paths = append(out.Paths, a)
			continue
		}
		switch strings.ToLower(a) {
		case SwitchKeepStore:
			out.Legacy.KeepStore = true
		case SwitchSingleThread:
			out.Legacy.SingleThread = true
		case SwitchSameFolder:
			out.Legacy.SameFolder = true
		default:
			if looksLikePath(a) || exists(a) {
				out.Paths = append(out.Paths, a)
			} else {
				out.Ignored = append(out.Ignored, a)
			}
		}
	}
	return out
}

// looksLikePath reports whether a slash token reads as an absolute path
// rather than a switch: "/data/foo" or "/foo.ifc", not "/fast".
func looksLikePath(tok string) bool {
	return strings.Contains(tok[1:], "/") || filepath.Ext(tok) != ""
}
