// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package dockerize

import "errors"

var (
	// ErrNoBinaries is returned if no binary is given.
	ErrNoBinaries = errors.New("at least one binary is required")

	// ErrNotRegularFile is returned if a binary is not a regular file.
	ErrNotRegularFile = errors.New("not a regular file")

	// ErrUnknownReader is returned if the section reader is unknown.
	ErrUnknownReader = errors.New("unknown section reader")

	// ErrEmptySource is returned if a file spec has no source.
	ErrEmptySource = errors.New("empty source")

	// ErrImageBuild is returned if the image builder fails.
	ErrImageBuild = errors.New("image build failed")
)
