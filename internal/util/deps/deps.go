package deps

import (
	"fmt"
	"os"
	"os/exec"
)

// DefaultConverter is the converter executable looked up in PATH.
const DefaultConverter = "xbim-convert"

// FindConverter returns the path to the geometry converter tool.
// If customPath is non-empty, it tries that path or looks it up in PATH.
func FindConverter(customPath string) (string, error) {
	if customPath != "" {
		if fi, err := os.Stat(customPath); err == nil && !fi.IsDir() {
			return customPath, nil
		}
		if p, err := exec.LookPath(customPath); err == nil {
			return p, nil
		}
		return "", fmt.Errorf("could not find converter at %q", customPath)
	}
	if p, err := exec.LookPath(DefaultConverter); err == nil {
		return p, nil
	}
	return "", fmt.Errorf("could not find %s in PATH; install it or pass --converter", DefaultConverter)
}
