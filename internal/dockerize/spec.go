// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package dockerize

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aibor/dockerize/internal/rootfs"
	"github.com/aibor/dockerize/internal/sys"
	"github.com/hashicorp/go-multierror"
)

// Section readers that can be used for reading the ELF interpreter.
const (
	ReaderELF     = "elf"
	ReaderObjdump = "objdump"
)

// DefaultBuilder is the container image builder used if none is given.
const DefaultBuilder = "docker"

// Spec describes a single [Build].
type Spec struct {
	// Binaries are added at their absolute host path.
	Binaries []string

	// Files are additional files added to the image.
	Files []FileSpec

	// TargetDir is the directory the image content is staged in. If empty,
	// a temporary directory is used and removed after the build.
	TargetDir string

	// Tag of the built image.
	Tag string

	// Cmd and Entrypoint of the image as command lines that are split into
	// words with shell quoting rules.
	Cmd        string
	Entrypoint string

	// Users and Groups are added to /etc/passwd and /etc/group of the image.
	// They are either names looked up on the host or complete entries.
	Users  []string
	Groups []string

	// Symlinks defines how symbolic links in binaries and files are handled.
	// Shared objects are always copied with [rootfs.CopyAll].
	Symlinks rootfs.SymlinkPolicy

	// Build the image with the Builder. If false, only the directory is
	// staged.
	Build   bool
	Builder string

	// Archive is the path a CPIO archive of the staged directory is written
	// to, if not empty.
	Archive string

	// Reader is the section reader used for reading the ELF interpreter.
	// One of [ReaderELF] (default) and [ReaderObjdump].
	Reader string

	// Jobs is the number of files resolved in parallel. Defaults to the
	// number of CPUs.
	Jobs int

	// LoaderTimeout limits each invocation of an ELF interpreter.
	LoaderTimeout time.Duration

	// HostFS is used for looking up users and groups. Defaults to the root
	// of the host file system.
	HostFS fs.FS

	// Stdout and Stderr of the image builder. Default to [os.Stdout] and
	// [os.Stderr].
	Stdout io.Writer
	Stderr io.Writer
}

// Validate checks the spec for problems and returns all of them.
func (s *Spec) Validate() error {
	var err error

	if len(s.Binaries) == 0 {
		err = multierror.Append(err, ErrNoBinaries)
	}

	for _, binary := range s.Binaries {
		if binErr := validateBinary(binary); binErr != nil {
			err = multierror.Append(err, binErr)
		}
	}

	for _, file := range s.Files {
		if file.Source == "" {
			err = multierror.Append(err, ErrEmptySource)
		}

		if file.Target != "" && !filepath.IsAbs(file.Target) {
			err = multierror.Append(err, &rootfs.PathError{
				Op:   "validate",
				Path: file.Target,
				Err:  rootfs.ErrRelativeTarget,
			})
		}
	}

	switch s.Reader {
	case "", ReaderELF, ReaderObjdump:
	default:
		err = multierror.Append(err, fmt.Errorf("%w: %s", ErrUnknownReader, s.Reader))
	}

	return err
}

func validateBinary(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("binary: %w", err)
	}

	if !info.Mode().IsRegular() {
		return &fs.PathError{Op: "binary", Path: path, Err: ErrNotRegularFile}
	}

	return nil
}

//nolint:ireturn
func (s *Spec) describer() sys.Describer {
	if s.Reader == ReaderObjdump {
		return &sys.ObjdumpReader{Logger: slog.Default()}
	}

	return sys.ELFReader{}
}

func (s *Spec) builder() string {
	if s.Builder == "" {
		return DefaultBuilder
	}

	return s.Builder
}

//nolint:ireturn
func (s *Spec) hostFS() fs.FS {
	if s.HostFS == nil {
		return os.DirFS("/")
	}

	return s.HostFS
}

//nolint:ireturn
func (s *Spec) stdout() io.Writer {
	if s.Stdout == nil {
		return os.Stdout
	}

	return s.Stdout
}

//nolint:ireturn
func (s *Spec) stderr() io.Writer {
	if s.Stderr == nil {
		return os.Stderr
	}

	return s.Stderr
}
