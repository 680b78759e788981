// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDependencyRecordParseFrom(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected DependencyRecord
		ok       bool
	}{
		{
			name: "vdso",
			line: "	linux-vdso.so.1 (0x00007fff00ddc000)",
			expected: DependencyRecord{
				Name:    "linux-vdso.so.1",
				Address: 0x00007fff00ddc000,
			},
			ok: true,
		},
		{
			name: "regular lib",
			line: "	libfunc2.so => testdata/lib/libfunc2.so (0x00007fb8)",
			expected: DependencyRecord{
				Name:    "libfunc2.so",
				Path:    "testdata/lib/libfunc2.so",
				Address: 0x00007fb8,
			},
			ok: true,
		},
		{
			name: "interpreter",
			line: "	/lib64/ld-linux-x86-64.so.2 (0x00007ff161257000)",
			expected: DependencyRecord{
				Path:    "/lib64/ld-linux-x86-64.so.2",
				Address: 0x00007ff161257000,
			},
			ok: true,
		},
		{
			name: "absolute name",
			line: "	/lib64/ld-linux-x86-64.so.2 => /usr/lib64/ld-linux-x86-64.so.2 (0x00007ff161257000)",
			expected: DependencyRecord{
				Name:    "/lib64/ld-linux-x86-64.so.2",
				Path:    "/usr/lib64/ld-linux-x86-64.so.2",
				Address: 0x00007ff161257000,
			},
			ok: true,
		},
		{
			name: "leading spaces",
			line: "  libnotfound.so => not found",
			expected: DependencyRecord{
				Name:       "libnotfound.so",
				Unresolved: true,
			},
			ok: true,
		},
		{
			name: "no leading tab",
			line: "libc.so.6 => /lib/libc.so.6 (0x7f00)",
			expected: DependencyRecord{
				Name:    "libc.so.6",
				Path:    "/lib/libc.so.6",
				Address: 0x7f00,
			},
			ok: true,
		},
		{
			name: "not found",
			line: "	libmissing.so.1 => not found",
			expected: DependencyRecord{
				Name:       "libmissing.so.1",
				Unresolved: true,
			},
			ok: true,
		},
		{
			name: "statically linked",
			line: "	statically linked",
		},
		{
			name: "empty",
			line: "",
		},
		{
			name: "no address",
			line: "	libc.so.6 => /lib/libc.so.6",
		},
		{
			name: "bad address",
			line: "	libc.so.6 => /lib/libc.so.6 (0xzz)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var record DependencyRecord

			ok := record.parseFrom(tt.line)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, record)
		})
	}
}

func TestParseLoaderOutput(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		paths []string
	}{
		{
			name: "testdata",
			//nolint:lll
			// $ LD_LIBRARY_PATH=testdata/lib/ /lib64/ld-linux-x86-64.so.2 --list testdata/bin/main
			lines: []string{
				"	linux-vdso.so.1 (0x00007ffeb67ab000)",
				"	libfunc2.so => testdata/lib/libfunc2.so (0x00007f772d017000)",
				"	libfunc3.so => testdata/lib/libfunc3.so (0x00007f772d013000)",
				"	libfunc1.so => testdata/lib/libfunc1.so (0x00007f772d00f000)",
			},
			paths: []string{
				"testdata/lib/libfunc2.so",
				"testdata/lib/libfunc3.so",
				"testdata/lib/libfunc1.so",
			},
		},
		{
			name: "env",
			//nolint:lll
			// $ /lib64/ld-linux-x86-64.so.2 --list /usr/bin/env
			lines: []string{
				"	linux-vdso.so.1 (0x00007fffec7d1000)",
				"	libc.so.6 => /usr/lib/libc.so.6 (0x00007ff161040000)",
				"	/lib64/ld-linux-x86-64.so.2 => /usr/lib64/ld-linux-x86-64.so.2 (0x00007ff161257000)",
			},
			paths: []string{
				"/usr/lib/libc.so.6",
				"/usr/lib64/ld-linux-x86-64.so.2",
			},
		},
		{
			name: "malformed line in between",
			lines: []string{
				"	libc.so.6 => /lib/libc.so.6 (0x00007ff161040000)",
				"	this is => not (what we expect",
				"garbage",
				"	libm.so.6 => /lib/libm.so.6 (0x00007ff161000000)",
			},
			paths: []string{
				"/lib/libc.so.6",
				"/lib/libm.so.6",
			},
		},
		{
			name: "mixed indentation",
			lines: []string{
				"libc.so.6 => /lib/libc.so.6 (0x7f0000)",
				"/lib64/ld-linux-x86-64.so.2 (0x7f1000)",
				"  libm.so.6 => /lib/libm.so.6 (0x7f2000)",
			},
			paths: []string{
				"/lib/libc.so.6",
				"/lib64/ld-linux-x86-64.so.2",
				"/lib/libm.so.6",
			},
		},
		{
			name: "musl",
			// $ /lib/ld-musl-x86_64.so.1 --list /bin/busybox
			lines: []string{
				"	/lib/ld-musl-x86_64.so.1 (0x7f3c1a5e7000)",
				"	libc.musl-x86_64.so.1 => /lib/ld-musl-x86_64.so.1 (0x7f3c1a5e7000)",
			},
			paths: []string{
				"/lib/ld-musl-x86_64.so.1",
				"/lib/ld-musl-x86_64.so.1",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := strings.Join(tt.lines, "\n") + "\n"

			var paths []string

			for _, record := range ParseLoaderOutput(strings.NewReader(input)) {
				if record.Path != "" {
					paths = append(paths, record.Path)
				}
			}

			assert.Equal(t, tt.paths, paths)
		})
	}
}
