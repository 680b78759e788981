// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package rootfs stages files into a directory tree that is used as the root
// file system of a container image.
//
// Files are copied from a source file system into a target file system with
// a configurable [SymlinkPolicy]. A staged tree can be exported as CPIO
// archive with [WriteCPIO].
package rootfs
