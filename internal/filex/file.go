// Package filex resolves on-disk locations used by the client.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureSubdDir creates dirName under base (the working directory when base
// is empty) and returns its path.
func EnsureSubdDir(base, dirName string) (string, error) {
	if base == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
		base = cwd
	}

	dir := filepath.Join(base, dirName)

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// DataPath returns the path of file inside the per-user data directory of
// app, creating the directory. Without a user config dir it falls back to
// the working directory.
func DataPath(app, file string) (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		base = ""
	}
	dir, err := EnsureSubdDir(base, app)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, file), nil
}
