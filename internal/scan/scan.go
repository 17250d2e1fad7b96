// Package scan enumerates candidate recording files under a root directory.
package scan

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

// ErrNotDirectory indicates the scan root is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// Files returns every regular file under root (recursive), sorted
// lexicographically by full path. Gap detection compares neighbours in
// this order, so it must be deterministic.
//
// A root that is itself a symlink is followed; symlinks below it are not.
// Returned paths keep root as their prefix. Unreadable subdirectories are
// logged and skipped.
func Files(root string, logger *slog.Logger) ([]string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scan root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan root %s: %w", root, ErrNotDirectory)
	}

	// WalkDir does not descend into a symlinked root.
	walkRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return nil, fmt.Errorf("scan root: %w", err)
	}

	var files []string
	err = filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == walkRoot {
				return walkErr
			}
			logger.Warn("skipping unreadable path", "path", path, "error", walkErr)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(walkRoot, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.Join(root, rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}

	// WalkDir orders by name per directory, which is not the same as
	// ordering full paths ("a-b/x" sorts before "a/x" as a string).
	sort.Strings(files)
	return files, nil
}
