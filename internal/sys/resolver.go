// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Resolver resolves the dynamically linked shared objects of ELF files
// recursively.
//
// The zero value is ready to use. It reads section tables with [ELFReader]
// and lists dependencies with [Loader].
type Resolver struct {
	// Describer reads the interpreter of a file. Defaults to [ELFReader].
	Describer Describer

	// Lister lists the dependencies of a file. Defaults to [Loader].
	Lister LoaderLister

	// Concurrency is the number of files expanded in parallel. Defaults to
	// the number of CPUs.
	Concurrency int

	// Logger receives messages about files that are skipped or can not be
	// resolved. Defaults to [slog.Default].
	Logger *slog.Logger
}

// expansion is the result of querying a single file for its dependencies.
type expansion struct {
	interpreter string
	deps        []string
	unresolved  []string
}

// Resolve collects the shared objects required by the files with the given
// paths and, recursively, by those shared objects.
//
// Files that are not ELF files or have no interpreter do not contribute any
// dependencies. If the loader fails for a file, it is logged and the file
// does not contribute any dependencies. Each distinct path is queried once.
//
// Only errors that make the whole resolution meaningless are returned, like
// a missing inspection tool or cancellation of the context.
func (r *Resolver) Resolve(ctx context.Context, paths ...string) (*Closure, error) {
	closure := newClosure()
	visited := make(map[string]struct{})

	worklist, err := AbsolutePaths(paths)
	if err != nil {
		return nil, err
	}

	for len(worklist) > 0 {
		round := nextRound(worklist, visited)

		results, err := r.expandAll(ctx, round)
		if err != nil {
			return nil, err
		}

		worklist = nil

		for _, exp := range results {
			worklist = append(worklist, closure.add(exp, visited)...)
		}
	}

	return closure, nil
}

// nextRound returns the deduplicated paths of the worklist that are not
// visited yet and marks them visited.
func nextRound(worklist []string, visited map[string]struct{}) []string {
	var round []string

	for _, path := range worklist {
		if _, done := visited[path]; done {
			continue
		}

		visited[path] = struct{}{}
		round = append(round, path)
	}

	return round
}

func (r *Resolver) expandAll(ctx context.Context, paths []string) ([]expansion, error) {
	results := make([]expansion, len(paths))

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(r.concurrency())

	for idx, path := range paths {
		group.Go(func() error {
			err := ctx.Err()
			if err != nil {
				return err //nolint:wrapcheck
			}

			exp, err := r.expand(ctx, path)
			if err != nil {
				return fmt.Errorf("[%s]: %w", path, err)
			}

			results[idx] = exp

			return nil
		})
	}

	err := group.Wait()
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return results, nil
}

// expand queries the dependencies of a single file.
func (r *Resolver) expand(ctx context.Context, path string) (expansion, error) {
	var exp expansion

	logger := r.logger().With(slog.String("path", path))

	desc, err := r.describer().Describe(ctx, path)
	if err != nil {
		if errors.Is(err, ErrNotELFFile) {
			logger.Debug("Not an ELF file, ignoring")
			return exp, nil
		}

		return exp, fmt.Errorf("describe: %w", err)
	}

	interpreter, err := desc.Interpreter()
	if err != nil {
		if errors.Is(err, ErrNoInterpreter) {
			logger.Debug("No interpreter section, ignoring")
			return exp, nil
		}

		return exp, err
	}

	exp.interpreter, err = AbsolutePath(interpreter)
	if err != nil {
		return exp, fmt.Errorf("interpreter: %w", err)
	}

	records, err := r.lister().List(ctx, exp.interpreter, path)
	if err != nil {
		if errors.Is(err, &LoaderExecError{}) && ctx.Err() == nil {
			logger.Warn("Dependencies not resolved, file is used as is",
				slog.Any("error", err))

			return exp, nil
		}

		return exp, fmt.Errorf("list dependencies: %w", err)
	}

	for _, record := range records {
		if record.Path == "" {
			if record.Unresolved {
				logger.Warn("Dependency not found",
					slog.String("name", record.Name))
				exp.unresolved = append(exp.unresolved, record.Name)
			}

			continue
		}

		dep, err := AbsolutePath(record.Path)
		if err != nil {
			return exp, fmt.Errorf("dependency %s: %w", record.Name, err)
		}

		// The file itself might be listed as well.
		if dep == path {
			continue
		}

		logger.Debug("Dependency found", slog.String("dependency", dep))

		exp.deps = append(exp.deps, dep)
	}

	return exp, nil
}

//nolint:ireturn
func (r *Resolver) describer() Describer {
	if r.Describer == nil {
		return ELFReader{}
	}

	return r.Describer
}

//nolint:ireturn
func (r *Resolver) lister() LoaderLister {
	if r.Lister == nil {
		return &Loader{}
	}

	return r.Lister
}

func (r *Resolver) concurrency() int {
	if r.Concurrency <= 0 {
		return runtime.NumCPU()
	}

	return r.Concurrency
}

func (r *Resolver) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}

	return r.Logger
}
