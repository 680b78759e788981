// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package rootfs

import (
	"errors"
	"io/fs"
)

var (
	// ErrRelativeTarget is returned if a container path is not absolute.
	ErrRelativeTarget = errors.New("container paths must be fully qualified")

	// ErrNotRegularFile is returned if a file is expected to be a regular file
	// but is not.
	ErrNotRegularFile = errors.New("not a regular file")

	// ErrUnsupportedFileType is returned for files that are neither regular
	// files, directories nor symbolic links.
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrSymlinkPolicyUnknown is returned if an unknown symlink policy is set.
	ErrSymlinkPolicyUnknown = errors.New("unknown symlink policy")
)

// PathError records an error and the operation and file path that caused it.
type PathError = fs.PathError
