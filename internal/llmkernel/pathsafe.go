package llmkernel

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// resolveWithinRoot resolves providedPath against root and guarantees the
// result stays inside root, symlinks included. Tool implementations use
// this before any filesystem read so a model-supplied path can never
// escape the repository working tree it was handed.
func resolveWithinRoot(root, providedPath string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve root: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(absRoot); err == nil {
		absRoot = resolved
	}

	absPath := providedPath
	if !filepath.IsAbs(providedPath) {
		absPath = filepath.Join(absRoot, providedPath)
	}
	absPath, err = filepath.Abs(absPath)
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}

	resolved, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("symlink resolution failed (possible traversal): %w", err)
		}
		resolved = absPath
	}

	rel, err := filepath.Rel(absRoot, resolved)
	if err != nil || strings.HasPrefix(rel, "..") || filepath.IsAbs(rel) {
		return "", fmt.Errorf("path %q escapes repository root", providedPath)
	}
	return resolved, nil
}
