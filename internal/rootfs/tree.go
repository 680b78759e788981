// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package rootfs

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

const dirPerm = 0o755

// Tree is a directory tree files are staged into.
//
// Files are read from the source file system and written into the target
// file system below the root directory. Container paths are absolute paths
// within the tree.
type Tree struct {
	source afero.Fs
	target afero.Fs
	root   string
	logger *slog.Logger
}

// NewTree creates a new [Tree] that stages files from source into target
// below the given root directory.
func NewTree(source, target afero.Fs, root string, logger *slog.Logger) *Tree {
	if logger == nil {
		logger = slog.Default()
	}

	return &Tree{
		source: source,
		target: target,
		root:   filepath.Clean(root),
		logger: logger,
	}
}

// NewDirTree creates a new [Tree] that stages files from the host into the
// given directory of the host.
func NewDirTree(dir string, logger *slog.Logger) *Tree {
	osFs := afero.NewOsFs()

	return NewTree(osFs, osFs, dir, logger)
}

// Root returns the directory the tree is located in.
func (t *Tree) Root() string {
	return t.root
}

// Fs returns the file system the tree is located in.
//
//nolint:ireturn
func (t *Tree) Fs() afero.Fs {
	return t.target
}

// HostPath returns the path of the given container path in the target file
// system.
func (t *Tree) HostPath(containerPath string) string {
	return filepath.Join(t.root, containerPath)
}

// Add copies the file or directory at the source path recursively into the
// tree at the given absolute container path. Symbolic links are handled
// according to the given policy.
func (t *Tree) Add(src, dst string, policy SymlinkPolicy) error {
	if !filepath.IsAbs(dst) {
		return &PathError{Op: "add", Path: dst, Err: ErrRelativeTarget}
	}

	src = filepath.Clean(src)

	err := t.target.MkdirAll(t.HostPath(filepath.Dir(dst)), dirPerm)
	if err != nil {
		return fmt.Errorf("create parent directory: %w", err)
	}

	// Links within a copied directory are safe as long as they stay within
	// this directory.
	root := filepath.Dir(src)

	info, err := lstat(t.source, src)
	if err == nil && info.IsDir() {
		root = src
	}

	return t.add(root, src, filepath.Clean(dst), policy)
}

// MustAdd adds the file with [Tree.Add] and panics on error.
func (t *Tree) MustAdd(src, dst string, policy SymlinkPolicy) {
	err := t.Add(src, dst, policy)
	if err != nil {
		panic(err)
	}
}

func (t *Tree) add(root, src, dst string, policy SymlinkPolicy) error {
	info, err := lstat(t.source, src)
	if err != nil {
		return fmt.Errorf("stat: %w", err)
	}

	if info.Mode()&fs.ModeSymlink != 0 {
		return t.addLink(root, src, dst, policy)
	}

	switch {
	case info.Mode().IsRegular():
		t.logger.Debug("Copy file",
			slog.String("source", src),
			slog.String("destination", dst),
		)

		return t.copyFile(src, dst, info.Mode().Perm())
	case info.IsDir():
		return t.copyDir(root, src, dst, info.Mode().Perm(), policy)
	default:
		return &PathError{Op: "add", Path: src, Err: ErrUnsupportedFileType}
	}
}

func (t *Tree) addLink(root, src, dst string, policy SymlinkPolicy) error {
	target, err := readlink(t.source, src)
	if err != nil {
		return fmt.Errorf("read link: %w", err)
	}

	unsafe := isUnsafeLink(root, src, target)

	switch {
	case policy == CopyAll, policy == CopyUnsafe && unsafe:
		info, err := t.source.Stat(src)
		if err != nil {
			return fmt.Errorf("follow link: %w", err)
		}

		if info.IsDir() {
			return t.copyDir(src, src, dst, info.Mode().Perm(), policy)
		}

		t.logger.Debug("Copy link target",
			slog.String("source", src),
			slog.String("destination", dst),
		)

		return t.copyFile(src, dst, info.Mode().Perm())
	case policy == SkipUnsafe && unsafe:
		t.logger.Debug("Skip unsafe link",
			slog.String("source", src),
			slog.String("target", target),
		)

		return nil
	default:
		t.logger.Debug("Create link",
			slog.String("destination", dst),
			slog.String("target", target),
		)

		return t.symlink(target, dst)
	}
}

func (t *Tree) copyDir(root, src, dst string, perm fs.FileMode, policy SymlinkPolicy) error {
	err := t.target.MkdirAll(t.HostPath(dst), perm|0o700)
	if err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	entries, err := afero.ReadDir(t.source, src)
	if err != nil {
		return fmt.Errorf("read directory: %w", err)
	}

	for _, entry := range entries {
		err := t.add(
			root,
			filepath.Join(src, entry.Name()),
			filepath.Join(dst, entry.Name()),
			policy,
		)
		if err != nil {
			return err
		}
	}

	return nil
}

func (t *Tree) copyFile(src, dst string, perm fs.FileMode) error {
	source, err := t.source.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer source.Close()

	hostPath := t.HostPath(dst)

	err = t.removeNonDir(hostPath)
	if err != nil {
		return err
	}

	target, err := t.target.OpenFile(hostPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer target.Close()

	_, err = io.Copy(target, source)
	if err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}

	// Mode of created files is subject to umask.
	err = t.target.Chmod(hostPath, perm)
	if err != nil {
		return fmt.Errorf("set mode: %w", err)
	}

	return nil
}

func (t *Tree) symlink(target, dst string) error {
	linker, ok := t.target.(afero.Linker)
	if !ok {
		return &PathError{Op: "symlink", Path: dst, Err: afero.ErrNoSymlink}
	}

	hostPath := t.HostPath(dst)

	err := t.removeNonDir(hostPath)
	if err != nil {
		return err
	}

	err = linker.SymlinkIfPossible(target, hostPath)
	if err != nil {
		return fmt.Errorf("create link: %w", err)
	}

	return nil
}

// removeNonDir removes an existing file at the given host path so it can be
// replaced. Directories are kept.
func (t *Tree) removeNonDir(hostPath string) error {
	info, err := lstat(t.target, hostPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}

		return fmt.Errorf("stat target: %w", err)
	}

	if info.IsDir() {
		return &PathError{Op: "replace", Path: hostPath, Err: fs.ErrExist}
	}

	err = t.target.Remove(hostPath)
	if err != nil {
		return fmt.Errorf("remove existing: %w", err)
	}

	return nil
}

//nolint:ireturn
func lstat(fsys afero.Fs, path string) (fs.FileInfo, error) {
	if lstater, ok := fsys.(afero.Lstater); ok {
		info, _, err := lstater.LstatIfPossible(path)
		return info, err //nolint:wrapcheck
	}

	return fsys.Stat(path) //nolint:wrapcheck
}

func readlink(fsys afero.Fs, path string) (string, error) {
	reader, ok := fsys.(afero.LinkReader)
	if !ok {
		return "", &PathError{Op: "readlink", Path: path, Err: afero.ErrNoReadlink}
	}

	return reader.ReadlinkIfPossible(path) //nolint:wrapcheck
}
