// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import (
	"iter"
	"maps"
	"slices"
)

// Closure is the deduplicated, transitive set of shared objects required by a
// set of ELF files, as collected by [Resolver.Resolve].
//
// A Closure returned by [Resolver.Resolve] is complete and must be treated as
// read-only.
type Closure struct {
	paths        map[string]struct{}
	interpreters map[string]struct{}
	unresolved   map[string]struct{}
}

func newClosure() *Closure {
	return &Closure{
		paths:        make(map[string]struct{}),
		interpreters: make(map[string]struct{}),
		unresolved:   make(map[string]struct{}),
	}
}

// Paths returns an iterator that iterates all shared object paths, including
// interpreters, sorted by path.
func (c *Closure) Paths() iter.Seq[string] {
	return sortedKeys(c.paths)
}

// Interpreters returns an iterator that iterates all ELF interpreters sorted
// by path.
func (c *Closure) Interpreters() iter.Seq[string] {
	return sortedKeys(c.interpreters)
}

// Unresolved returns an iterator that iterates all names of shared objects
// the loader could not find, sorted by name.
func (c *Closure) Unresolved() iter.Seq[string] {
	return sortedKeys(c.unresolved)
}

// Contains reports whether the given path is part of the closure.
func (c *Closure) Contains(path string) bool {
	_, exists := c.paths[path]
	return exists
}

// Len returns the number of paths in the closure.
func (c *Closure) Len() int {
	return len(c.paths)
}

// Prefixes returns the distinct directories of all paths in the closure.
func (c *Closure) Prefixes() []string {
	return Prefixes(c.Paths())
}

// add adds the result of a single file's expansion. It returns the
// dependencies that are not yet visited.
func (c *Closure) add(exp expansion, visited map[string]struct{}) []string {
	var next []string

	if exp.interpreter != "" {
		c.paths[exp.interpreter] = struct{}{}
		c.interpreters[exp.interpreter] = struct{}{}
	}

	for _, dep := range exp.deps {
		c.paths[dep] = struct{}{}

		if _, done := visited[dep]; !done {
			next = append(next, dep)
		}
	}

	for _, name := range exp.unresolved {
		c.unresolved[name] = struct{}{}
	}

	return next
}

func sortedKeys(m map[string]struct{}) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, key := range slices.Sorted(maps.Keys(m)) {
			if !yield(key) {
				return
			}
		}
	}
}
