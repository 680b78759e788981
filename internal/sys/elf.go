// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import (
	"context"
	"debug/elf"
	"errors"
	"fmt"
	"io"
	"io/fs"
)

var _ Describer = ELFReader{}

// ELFReader is a [Describer] that reads the section table with [debug/elf].
type ELFReader struct{}

// Describe reads the section table of the ELF file at the given path.
//
// It returns [ErrNotELFFile] if the file is not an ELF file or can not be
// read at all, like a directory or a missing file.
func (ELFReader) Describe(
	_ context.Context,
	path string,
) (*BinaryDescriptor, error) {
	file, err := elf.Open(path)
	if err != nil {
		if isNotELF(err) {
			return nil, fmt.Errorf("%w: %w", ErrNotELFFile, err)
		}

		return nil, fmt.Errorf("open elf: %w", err)
	}
	defer file.Close()

	sections := make(map[string]SectionRecord, len(file.Sections))

	for _, section := range file.Sections {
		if section.Name == "" {
			continue
		}

		sections[section.Name] = SectionRecord{
			Name:   section.Name,
			Offset: section.Offset,
			Size:   section.Size,
		}
	}

	return newBinaryDescriptor(path, sections)
}

// isNotELF checks if the error returned by [elf.Open] means the file is not an
// ELF file. Files shorter than the ELF ident fail with EOF before the magic
// number is checked. Open and read errors are reported as [*fs.PathError].
func isNotELF(err error) bool {
	var (
		formatErr *elf.FormatError
		pathErr   *fs.PathError
	)

	return errors.As(err, &formatErr) ||
		errors.As(err, &pathErr) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}
