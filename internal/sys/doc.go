// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package sys resolves the shared object dependencies of dynamically linked
// ELF files.
//
// The interpreter of a file is read from its ".interp" section, either with
// [debug/elf] ([ELFReader]) or by parsing "objdump -h" output
// ([ObjdumpReader]). The interpreter is then executed in list mode
// ([Loader]) to get the dependencies as the dynamic linker would resolve
// them at run time. [Resolver] does this recursively for a set of files and
// returns the complete [Closure].
package sys
