package filesystem

import (
	"os"
	"path/filepath"
	"strings"
)

// ResolvePath normalises a user-supplied folder path: expands a leading
// "~" to the home directory and makes relative paths absolute.
func ResolvePath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return filepath.Abs(path)
}
