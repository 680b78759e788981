// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package dockerize

import (
	"path/filepath"
	"strings"
)

// FileSpec is an additional file added to the image.
type FileSpec struct {
	// Source is the path on the host. It may be a glob pattern.
	Source string

	// Target is the absolute path in the image. If empty, the absolute
	// source path is used.
	Target string
}

// ParseFileSpec parses a file spec in the form "src[:dst]".
func ParseFileSpec(s string) (FileSpec, error) {
	src, dst, _ := strings.Cut(s, ":")
	if src == "" {
		return FileSpec{}, ErrEmptySource
	}

	return FileSpec{Source: src, Target: dst}, nil
}

func (f FileSpec) String() string {
	if f.Target == "" {
		return f.Source
	}

	return f.Source + ":" + f.Target
}

// targetFor returns the path in the image for the given match of the source
// pattern. If the pattern matches multiple files, the target is considered
// a directory the files are placed in.
func (f FileSpec) targetFor(match string, multiple bool) string {
	switch {
	case f.Target == "":
		return match
	case multiple:
		return filepath.Join(f.Target, filepath.Base(match))
	default:
		return f.Target
	}
}
