// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package dockerize

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aibor/dockerize/internal/manifest"
	"github.com/aibor/dockerize/internal/rootfs"
	"github.com/aibor/dockerize/internal/sys"
	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
)

const targetDirPerm = 0o755

// Build builds a container image with the given [Spec].
//
// The binaries and files are staged into the target directory together with
// all shared objects they depend on, as well as the name service switch
// modules found next to them. A Dockerfile and basic configuration files in
// /etc are generated. If requested, a CPIO archive of the directory is
// written and the image is built.
func Build(ctx context.Context, spec *Spec) error {
	err := spec.Validate()
	if err != nil {
		return fmt.Errorf("validate: %w", err)
	}

	manifests, err := newManifests(spec)
	if err != nil {
		return err
	}

	dir, cleanup, err := prepareTargetDir(spec.TargetDir)
	if err != nil {
		return err
	}
	defer cleanup()

	tree := rootfs.NewDirTree(dir, slog.Default())

	err = stageFiles(tree, spec)
	if err != nil {
		return fmt.Errorf("stage files: %w", err)
	}

	err = stageDependencies(ctx, tree, spec)
	if err != nil {
		return fmt.Errorf("stage dependencies: %w", err)
	}

	err = manifests.Write(tree.Fs(), tree.Root())
	if err != nil {
		return fmt.Errorf("write manifests: %w", err)
	}

	size, err := tree.Size()
	if err != nil {
		return fmt.Errorf("size: %w", err)
	}

	slog.Info("Image content staged",
		slog.String("dir", dir),
		slog.String("size", humanize.Bytes(uint64(size))), //nolint:gosec
	)

	if spec.Archive != "" {
		err = writeArchive(tree, spec.Archive)
		if err != nil {
			return err
		}
	}

	if spec.Build {
		err = buildImage(ctx, spec, dir)
		if err != nil {
			return err
		}
	}

	return nil
}

func newManifests(spec *Spec) (*manifest.Manifests, error) {
	var (
		manifests manifest.Manifests
		err       error
	)

	if spec.Entrypoint != "" {
		manifests.Entrypoint, err = manifest.SplitCommand(spec.Entrypoint)
		if err != nil {
			return nil, fmt.Errorf("entrypoint: %w", err)
		}
	}

	if spec.Cmd != "" {
		manifests.Cmd, err = manifest.SplitCommand(spec.Cmd)
		if err != nil {
			return nil, fmt.Errorf("cmd: %w", err)
		}
	}

	for _, user := range spec.Users {
		slog.Debug("Add user", slog.String("user", user))

		err := manifests.AddUser(spec.hostFS(), user)
		if err != nil {
			return nil, fmt.Errorf("add user: %w", err)
		}
	}

	for _, group := range spec.Groups {
		slog.Debug("Add group", slog.String("group", group))

		err := manifests.AddGroup(spec.hostFS(), group)
		if err != nil {
			return nil, fmt.Errorf("add group: %w", err)
		}
	}

	return &manifests, nil
}

// prepareTargetDir creates the given directory or a temporary one, if dir is
// empty. The returned cleanup function removes the directory only if it is a
// temporary one.
func prepareTargetDir(dir string) (string, func(), error) {
	if dir == "" {
		tmpDir, err := os.MkdirTemp("", "dockerize")
		if err != nil {
			return "", nil, fmt.Errorf("create temporary directory: %w", err)
		}

		cleanup := func() {
			slog.Debug("Remove temporary directory", slog.String("dir", tmpDir))

			err := os.RemoveAll(tmpDir)
			if err != nil {
				slog.Warn("Failed to remove temporary directory",
					slog.String("dir", tmpDir),
					slog.Any("error", err),
				)
			}
		}

		return tmpDir, cleanup, nil
	}

	slog.Warn("Writing output", slog.String("dir", dir))

	err := os.MkdirAll(dir, targetDirPerm)
	if err != nil {
		return "", nil, fmt.Errorf("create target directory: %w", err)
	}

	absDir, err := sys.AbsolutePath(dir)
	if err != nil {
		return "", nil, fmt.Errorf("target directory: %w", err)
	}

	return absDir, func() {}, nil
}

func stageFiles(tree *rootfs.Tree, spec *Spec) error {
	binaries, err := sys.AbsolutePaths(spec.Binaries)
	if err != nil {
		return fmt.Errorf("binary %w", err)
	}

	for _, path := range binaries {
		err := tree.Add(path, path, spec.Symlinks)
		if err != nil {
			return fmt.Errorf("binary %s: %w", path, err)
		}
	}

	for _, file := range spec.Files {
		err := stageFile(tree, file, spec.Symlinks)
		if err != nil {
			return fmt.Errorf("file %s: %w", file, err)
		}
	}

	return nil
}

func stageFile(tree *rootfs.Tree, file FileSpec, policy rootfs.SymlinkPolicy) error {
	matches, err := afero.Glob(afero.NewOsFs(), file.Source)
	if err != nil {
		return fmt.Errorf("glob: %w", err)
	}

	if len(matches) == 0 {
		slog.Warn("No files match", slog.String("pattern", file.Source))
		return nil
	}

	for _, match := range matches {
		match, err = sys.AbsolutePath(match)
		if err != nil {
			return err //nolint:wrapcheck
		}

		err = tree.Add(match, file.targetFor(match, len(matches) > 1), policy)
		if err != nil {
			return err //nolint:wrapcheck
		}
	}

	return nil
}

// stageDependencies resolves the shared objects of all regular files in the
// tree and adds them. Name service switch modules found in the directories
// of the shared objects are added along with their own dependencies.
func stageDependencies(ctx context.Context, tree *rootfs.Tree, spec *Spec) error {
	resolver := &sys.Resolver{
		Describer:   spec.describer(),
		Lister:      &sys.Loader{Timeout: spec.LoaderTimeout},
		Concurrency: spec.Jobs,
		Logger:      slog.Default(),
	}

	files, err := tree.RegularFiles()
	if err != nil {
		return err //nolint:wrapcheck
	}

	closure, err := resolver.Resolve(ctx, files...)
	if err != nil {
		return fmt.Errorf("resolve: %w", err)
	}

	err = addClosure(tree, closure)
	if err != nil {
		return err
	}

	searchPaths, err := sys.SearchPaths(closure.Prefixes())
	if err != nil {
		return fmt.Errorf("search paths: %w", err)
	}

	modules, err := tree.AddNSSModules(searchPaths)
	if err != nil {
		return err //nolint:wrapcheck
	}

	if len(modules) == 0 {
		return nil
	}

	moduleClosure, err := resolver.Resolve(ctx, modules...)
	if err != nil {
		return fmt.Errorf("resolve NSS modules: %w", err)
	}

	return addClosure(tree, moduleClosure)
}

func addClosure(tree *rootfs.Tree, closure *sys.Closure) error {
	unresolved := slices.Collect(closure.Unresolved())
	if len(unresolved) > 0 {
		slog.Warn("Shared objects not found, image might be incomplete",
			slog.String("names", strings.Join(unresolved, ", ")),
		)
	}

	for path := range closure.Paths() {
		// Objects found relative to a staged file, like with $ORIGIN in
		// its run path, are in the tree already.
		if isWithin(tree.Root(), path) {
			continue
		}

		err := tree.Add(path, path, rootfs.CopyAll)
		if err != nil {
			return fmt.Errorf("shared object %s: %w", path, err)
		}
	}

	return nil
}

func isWithin(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}

	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func writeArchive(tree *rootfs.Tree, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	defer file.Close()

	err = tree.WriteCPIO(file)
	if err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("write archive: %w", err)
	}

	slog.Info("Archive written", slog.String("path", path))

	return nil
}

func buildImage(ctx context.Context, spec *Spec, dir string) error {
	args := []string{"build"}
	if spec.Tag != "" {
		args = append(args, "-t", spec.Tag)
	}

	args = append(args, dir)

	cmd := exec.CommandContext(ctx, spec.builder(), args...)
	cmd.Stdout = spec.stdout()
	cmd.Stderr = spec.stderr()

	slog.Debug("Build image", slog.String("command", cmd.String()))

	err := cmd.Run()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrImageBuild, err)
	}

	return nil
}
