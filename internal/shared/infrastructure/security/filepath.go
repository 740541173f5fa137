// Package security validates file paths supplied on the command line.
package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// forbiddenChars are shell metacharacters rejected in user supplied paths.
var forbiddenChars = []string{";", "&", "|", "$", "`", "(", ")", "{", "}", "<", ">", "!", "\n", "\r"}

// ValidateFilePath cleans path, makes it absolute and resolves symlinks
// when the file already exists.
func ValidateFilePath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("file path cannot be empty")
	}

	for _, char := range forbiddenChars {
		if strings.Contains(path, char) {
			return "", fmt.Errorf("file path contains forbidden character %q: %s", char, path)
		}
	}

	cleanPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("failed to resolve file path: %w", err)
	}

	resolved, err := filepath.EvalSymlinks(cleanPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cleanPath, nil
		}
		return "", fmt.Errorf("failed to resolve file path: %w", err)
	}
	return resolved, nil
}

// ValidateExportPath validates a path for a file the CLI is about to write.
// The target must carry the wanted extension and its directory must exist.
func ValidateExportPath(path, ext string) (string, error) {
	cleanPath, err := ValidateFilePath(path)
	if err != nil {
		return "", err
	}

	if ext != "" && !strings.EqualFold(filepath.Ext(cleanPath), ext) {
		return "", fmt.Errorf("file %s must have the %s extension", path, ext)
	}

	info, err := os.Stat(cleanPath)
	switch {
	case err == nil && info.IsDir():
		return "", fmt.Errorf("%s is a directory", path)
	case err != nil && !os.IsNotExist(err):
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}

	dir, err := os.Stat(filepath.Dir(cleanPath))
	if err != nil || !dir.IsDir() {
		return "", fmt.Errorf("directory of %s does not exist", path)
	}
	return cleanPath, nil
}

// CreateExportFile validates path and creates the file with 0644 permissions.
func CreateExportFile(path, ext string) (*os.File, error) {
	cleanPath, err := ValidateExportPath(path, ext)
	if err != nil {
		return nil, err
	}
	// #nosec G304 - path is validated above
	return os.OpenFile(cleanPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
}
