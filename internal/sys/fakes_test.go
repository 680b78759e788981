// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys_test

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/aibor/dockerize/internal/sys"
)

// fakeDescriber returns descriptors with the interpreter set as mapped.
// Unmapped paths are not ELF files. An empty interpreter means the file is
// statically linked.
type fakeDescriber struct {
	interpreters map[string]string
	errs         map[string]error
}

func (f *fakeDescriber) Describe(
	_ context.Context,
	path string,
) (*sys.BinaryDescriptor, error) {
	if err, exists := f.errs[path]; exists {
		return nil, err
	}

	interpreter, exists := f.interpreters[path]
	if !exists {
		return nil, sys.ErrNotELFFile
	}

	desc := &sys.BinaryDescriptor{
		Path:     path,
		Sections: map[string]sys.SectionRecord{},
	}

	if interpreter != "" {
		desc.Sections[".interp"] = sys.SectionRecord{
			Name: ".interp",
			Size: uint64(len(interpreter) + 1),
		}
		desc.InterpreterPath = interpreter
	}

	return desc, nil
}

// fakeLister returns the mapped dependency paths and counts invocations per
// path.
type fakeLister struct {
	deps    map[string][]string
	missing map[string][]string
	errs    map[string]error

	mu    sync.Mutex
	calls map[string]int
}

func (f *fakeLister) List(
	_ context.Context,
	_ string,
	path string,
) ([]sys.DependencyRecord, error) {
	f.mu.Lock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[path]++
	f.mu.Unlock()

	if err, exists := f.errs[path]; exists {
		return nil, err
	}

	records := make([]sys.DependencyRecord, 0, len(f.deps[path]))
	for _, dep := range f.deps[path] {
		records = append(records, sys.DependencyRecord{
			Name:    dep,
			Path:    dep,
			Address: 0x7f0000000000,
		})
	}

	for _, name := range f.missing[path] {
		records = append(records, sys.DependencyRecord{
			Name:       name,
			Unresolved: true,
		})
	}

	return records, nil
}

func (f *fakeLister) callCount(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls[path]
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
