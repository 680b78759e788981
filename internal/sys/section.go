// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/sys/unix"
)

const interpSection = ".interp"

// maxInterpSize limits how much is read from an interpreter section. PATH_MAX
// is more than any sane loader path.
const maxInterpSize = unix.PathMax

// SectionRecord is a single entry of an ELF file's section table.
type SectionRecord struct {
	Name   string
	Offset uint64
	Size   uint64
}

// BinaryDescriptor is the part of an ELF file's structure required for
// dependency resolution.
type BinaryDescriptor struct {
	Path     string
	Sections map[string]SectionRecord

	// InterpreterPath is the content of the ".interp" section. Empty if the
	// file has none.
	InterpreterPath string
}

// Describer reads the [BinaryDescriptor] of a file.
//
// Implementations return an error wrapping [ErrNotELFFile] if the file is not
// an ELF file.
type Describer interface {
	Describe(ctx context.Context, path string) (*BinaryDescriptor, error)
}

// Section returns the section with the given name.
func (d *BinaryDescriptor) Section(name string) (SectionRecord, bool) {
	section, exists := d.Sections[name]
	return section, exists
}

// Interpreter returns the path of the ELF interpreter.
//
// It returns [ErrNoInterpreter] if the file has no interpreter, which is the
// case for statically linked executables and most shared objects.
func (d *BinaryDescriptor) Interpreter() (string, error) {
	if d.InterpreterPath == "" {
		return "", ErrNoInterpreter
	}

	return d.InterpreterPath, nil
}

// newBinaryDescriptor creates a [BinaryDescriptor] for the given sections and
// reads the interpreter path from the file, if there is an interpreter
// section.
func newBinaryDescriptor(
	path string,
	sections map[string]SectionRecord,
) (*BinaryDescriptor, error) {
	desc := &BinaryDescriptor{
		Path:     path,
		Sections: sections,
	}

	section, exists := desc.Section(interpSection)
	if !exists {
		return desc, nil
	}

	if section.Size > maxInterpSize {
		return nil, fmt.Errorf("%s section too big: %d", interpSection,
			section.Size)
	}

	data, err := ReadSection(path, section)
	if err != nil {
		return nil, err
	}

	desc.InterpreterPath = strings.TrimSpace(unix.ByteSliceToString(data))

	return desc, nil
}

// ReadSection reads the raw content of the given section from the file at the
// given path.
func ReadSection(path string, section SectionRecord) ([]byte, error) {
	if section.Offset > math.MaxInt64 || section.Size > math.MaxInt64 {
		return nil, fmt.Errorf("section %s out of range", section.Name)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer file.Close()

	reader := io.NewSectionReader(
		file,
		int64(section.Offset),
		int64(section.Size),
	)

	data := make([]byte, section.Size)

	_, err = io.ReadFull(reader, data)
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read section %s: %w", section.Name,
				ErrNotELFFile)
		}

		return nil, fmt.Errorf("read section %s: %w", section.Name, err)
	}

	return data, nil
}
