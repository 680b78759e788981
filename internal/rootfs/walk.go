// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package rootfs

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
)

// WalkFunc is called for each file in the tree with its absolute container
// path. Symbolic links are not followed.
type WalkFunc func(containerPath string, info fs.FileInfo) error

// Walk walks the tree in lexical order and calls fn for each file and
// directory, except the root directory itself.
func (t *Tree) Walk(fn WalkFunc) error {
	err := afero.Walk(t.target, t.root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(t.root, path)
		if err != nil {
			return fmt.Errorf("relative path: %w", err)
		}

		if rel == "." {
			return nil
		}

		return fn(string(filepath.Separator)+rel, info)
	})
	if err != nil {
		return fmt.Errorf("walk %s: %w", t.root, err)
	}

	return nil
}

// RegularFiles returns the host paths of all regular files in the tree.
func (t *Tree) RegularFiles() ([]string, error) {
	var paths []string

	err := t.Walk(func(containerPath string, info fs.FileInfo) error {
		if info.Mode().IsRegular() {
			paths = append(paths, t.HostPath(containerPath))
		}

		return nil
	})

	return paths, err
}

// Size returns the accumulated size of all regular files in the tree.
func (t *Tree) Size() (int64, error) {
	var size int64

	err := t.Walk(func(_ string, info fs.FileInfo) error {
		if info.Mode().IsRegular() {
			size += info.Size()
		}

		return nil
	})

	return size, err
}
