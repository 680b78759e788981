// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import (
	"fmt"
	"path/filepath"
)

// AbsolutePath returns the absolute path as resolved by [filepath.Abs].
//
// It returns [ErrEmptyPath] if the given path is empty.
func AbsolutePath(path string) (string, error) {
	if path == "" {
		return "", ErrEmptyPath
	}

	path, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("absolute path: %w", err)
	}

	return path, nil
}

// AbsolutePaths resolves all given paths with [AbsolutePath]. The error names
// the first path that fails.
func AbsolutePaths(paths []string) ([]string, error) {
	absPaths := make([]string, 0, len(paths))

	for _, path := range paths {
		absPath, err := AbsolutePath(path)
		if err != nil {
			return nil, fmt.Errorf("[%s]: %w", path, err)
		}

		absPaths = append(absPaths, absPath)
	}

	return absPaths, nil
}
