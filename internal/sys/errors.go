// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import "errors"

var (
	// ErrNoInterpreter is returned if no interpreter is found in an ELF file.
	ErrNoInterpreter = errors.New("no interpreter in ELF file")

	// ErrNotELFFile is returned if the file does not have an ELF magic number
	// or the section inspector refuses it.
	ErrNotELFFile = errors.New("is not an ELF file")

	// ErrInvalidSectionLine is returned if a section table line does not have
	// the expected shape.
	ErrInvalidSectionLine = errors.New("invalid section line")

	// ErrToolNotFound is returned if an external inspection tool can not be
	// executed at all.
	ErrToolNotFound = errors.New("inspection tool not found")

	// ErrEmptyPath is returned if an empty path is given.
	ErrEmptyPath = errors.New("path must not be empty")
)
