// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package rootfs

import (
	"fmt"
	"io"
	"io/fs"
	"strings"
)

// WriteCPIO writes the tree as newc CPIO archive to w. Entry names are
// relative to the tree root.
func (t *Tree) WriteCPIO(w io.Writer) error {
	writer := NewCPIOWriter(w)

	err := t.WriteTo(writer)
	if err != nil {
		return err
	}

	return writer.Close()
}

// WriteTo writes all files of the tree into the given [ArchiveWriter].
func (t *Tree) WriteTo(writer ArchiveWriter) error {
	return t.Walk(func(containerPath string, info fs.FileInfo) error {
		name := strings.TrimPrefix(containerPath, "/")

		var err error

		switch {
		case info.Mode()&fs.ModeSymlink != 0:
			err = t.writeLink(writer, name, containerPath)
		case info.IsDir():
			err = writer.WriteDirectory(name, info.Mode())
		case info.Mode().IsRegular():
			err = t.writeRegular(writer, name, containerPath)
		default:
			err = &PathError{Op: "archive", Path: containerPath, Err: ErrUnsupportedFileType}
		}

		return err
	})
}

func (t *Tree) writeLink(writer ArchiveWriter, name, containerPath string) error {
	target, err := readlink(t.target, t.HostPath(containerPath))
	if err != nil {
		return fmt.Errorf("read link: %w", err)
	}

	return writer.WriteLink(name, target)
}

func (t *Tree) writeRegular(writer ArchiveWriter, name, containerPath string) error {
	file, err := t.target.Open(t.HostPath(containerPath))
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer file.Close()

	return writer.WriteRegular(name, file)
}
