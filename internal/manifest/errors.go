// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package manifest

import "errors"

var (
	// ErrUnknownUser is returned if a user name is not found in the passwd
	// file.
	ErrUnknownUser = errors.New("unknown user")

	// ErrUnknownGroup is returned if a group is not found in the group file.
	ErrUnknownGroup = errors.New("unknown group")

	// ErrInvalidCommand is returned if a command line can not be split into
	// words.
	ErrInvalidCommand = errors.New("invalid command")
)
