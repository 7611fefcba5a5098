package cli

import "path/filepath"

// absPath resolves command line paths against the working directory.
func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
