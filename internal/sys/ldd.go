// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const defaultLoaderTimeout = 5 * time.Second

// DependencyRecord is a single shared object reported by the dynamic loader.
type DependencyRecord struct {
	// Name is the symbolic name the object is referenced by. Empty for
	// objects that are only reported by path, like the loader itself.
	Name string

	// Path is the resolved path of the object. Empty if the loader did not
	// resolve the object to a file, like the vdso or missing objects.
	Path string

	// Address is the load address of the object.
	Address uint64

	// Unresolved is true if the loader reported the object as "not found".
	Unresolved bool
}

// LoaderLister lists the shared object dependencies of an ELF file by use of
// its interpreter.
type LoaderLister interface {
	List(ctx context.Context, interpreter, path string) ([]DependencyRecord, error)
}

var _ LoaderLister = (*Loader)(nil)

// Loader is a [LoaderLister] that executes the ELF interpreter in list mode.
//
// Until version 2.27 the glibc provided ldd worked like this and executed the
// binary's own ELF interpreter directly. Newer versions try a fixed set of
// known interpreters instead, which is specific to the glibc build. Since
// executing the interpreter named in the file may lead to unintended
// execution of arbitrary code, use it for trusted binaries only!
//
// The dynamic linker consumes LD_LIBRARY_PATH from the environment, so it can
// be used to add search paths.
type Loader struct {
	// Timeout for a single loader invocation. Defaults to 5 seconds.
	Timeout time.Duration
}

// List runs the interpreter with "--list" for the file at the given path and
// parses the reported dependencies.
//
// It returns a [LoaderExecError] if the interpreter can not be executed or
// returns with a non-zero exit code.
func (l *Loader) List(
	ctx context.Context,
	interpreter string,
	path string,
) ([]DependencyRecord, error) {
	var out bytes.Buffer

	err := runLoader(ctx, l.timeout(), interpreter, path, &out)
	if err != nil {
		return nil, err
	}

	return ParseLoaderOutput(&out), nil
}

func (l *Loader) timeout() time.Duration {
	if l.Timeout <= 0 {
		return defaultLoaderTimeout
	}

	return l.Timeout
}

func runLoader(
	ctx context.Context,
	timeout time.Duration,
	interpreter string,
	path string,
	outW io.Writer,
) error {
	var stderrBuf bytes.Buffer

	ctx, stop := context.WithTimeout(ctx, timeout)
	defer stop()

	cmd := exec.CommandContext(ctx, interpreter, "--list", path)
	cmd.Stdout = outW
	cmd.Stderr = &stderrBuf

	err := cmd.Run()
	if err != nil {
		return &LoaderExecError{
			Interpreter: interpreter,
			Err:         err,
			Stderr:      stderrBuf.String(),
		}
	}

	return nil
}

// ParseLoaderOutput takes the output of an interpreter invoked in list mode
// and parses each line into a [DependencyRecord]. Lines that do not match any
// known format are skipped.
func ParseLoaderOutput(r io.Reader) []DependencyRecord {
	var records []DependencyRecord

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		var record DependencyRecord

		if record.parseFrom(scanner.Text()) {
			records = append(records, record)
		}
	}

	return records
}

// parseFrom parses a single line of loader output. It returns false if the
// line has none of the known formats.
func (r *DependencyRecord) parseFrom(line string) bool {
	var (
		name, path string
		addr       uint64
	)

	// Leading white space is optional.
	line = strings.TrimSpace(line)

	// Format for shared objects that are resolved to a path.
	// From glibc rtld.c: _dl_printf ("\t%s => %s (0x%0*zx)\n",
	_, err := fmt.Sscanf(line, "%s => %s (0x%x)", &name, &path, &addr)
	if err == nil {
		*r = DependencyRecord{Name: name, Path: path, Address: addr}
		return true
	}

	// Format for shared objects the loader could not find.
	// From glibc rtld.c: _dl_printf ("\t%s => not found\n",
	_, err = fmt.Sscanf(line, "%s => not found", &name)
	if err == nil {
		*r = DependencyRecord{Name: name, Unresolved: true}
		return true
	}

	// Format for shared objects that do not reference anything and might be
	// an absolute path already.
	// From glibc rtld.c: _dl_printf ("\t%s (0x%0*zx)\n"
	_, err = fmt.Sscanf(line, "%s (0x%x)", &name, &addr)
	if err == nil {
		*r = DependencyRecord{Address: addr}

		if filepath.IsAbs(name) {
			r.Path = name
		} else {
			r.Name = name
		}

		return true
	}

	return false
}
