// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"maps"
	"path/filepath"
	"slices"
)

// Prefixes returns the sorted distinct directories of the given paths.
func Prefixes(paths iter.Seq[string]) []string {
	dirs := make(map[string]struct{})

	for path := range paths {
		dirs[filepath.Dir(path)] = struct{}{}
	}

	return slices.Sorted(maps.Keys(dirs))
}

// SearchPaths returns the given directories and, if they contain symbolic
// links, their canonical paths as well. Directories that do not exist are
// skipped.
//
// Libraries might be resolved by the loader through a symlinked directory
// (like /lib64 -> usr/lib), while companion libraries are found next to
// the real files.
func SearchPaths(dirs []string) ([]string, error) {
	paths := make(map[string]struct{}, len(dirs))

	for _, dir := range dirs {
		dir = filepath.Clean(dir)
		paths[dir] = struct{}{}

		canonicalDir, err := filepath.EvalSymlinks(dir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}

			return nil, fmt.Errorf("[%s]: resolve symlinks: %w", dir, err)
		}

		paths[canonicalDir] = struct{}{}
	}

	return slices.Sorted(maps.Keys(paths)), nil
}
