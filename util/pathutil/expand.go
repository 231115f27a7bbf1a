// Package pathutil expands user-supplied paths from configuration:
// home-relative prefixes and environment variables.
package pathutil

import (
	"os"
	"path/filepath"
	"strings"
)

// Expand resolves a leading ~/ against the user's home directory and
// expands $VAR / ${VAR} references, then makes the path absolute. It is
// best effort: when a step fails the path so far is returned, so a
// configured override never silently turns into an empty path.
func Expand(path string) string {
	if path == "" {
		return path
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}

	path = os.ExpandEnv(path)

	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
