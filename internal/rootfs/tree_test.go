// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package rootfs_test

import (
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/aibor/dockerize/internal/rootfs"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newMemTree(t *testing.T, files map[string]string) (*rootfs.Tree, afero.Fs) {
	t.Helper()

	source := afero.NewMemMapFs()

	for path, content := range files {
		require.NoError(t, afero.WriteFile(source, path, []byte(content), 0o644))
	}

	target := afero.NewMemMapFs()

	return rootfs.NewTree(source, target, "/out", discardLogger()), target
}

func TestTree_Add(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		dst      string
		expected map[string]string
	}{
		{
			name: "file",
			src:  "/src/bin/app",
			dst:  "/usr/bin/app",
			expected: map[string]string{
				"/out/usr/bin/app": "app",
			},
		},
		{
			name: "renamed file",
			src:  "/src/etc/config",
			dst:  "/etc/app.conf",
			expected: map[string]string{
				"/out/etc/app.conf": "config",
			},
		},
		{
			name: "directory",
			src:  "/src/etc",
			dst:  "/etc",
			expected: map[string]string{
				"/out/etc/config":     "config",
				"/out/etc/sub/nested": "nested",
			},
		},
		{
			name: "unclean paths",
			src:  "/src/bin/../bin/app",
			dst:  "/bin//app",
			expected: map[string]string{
				"/out/bin/app": "app",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, target := newMemTree(t, map[string]string{
				"/src/bin/app":        "app",
				"/src/etc/config":     "config",
				"/src/etc/sub/nested": "nested",
			})

			err := tree.Add(tt.src, tt.dst, rootfs.Preserve)
			require.NoError(t, err)

			for path, content := range tt.expected {
				actual, err := afero.ReadFile(target, path)
				require.NoError(t, err, path)
				assert.Equal(t, content, string(actual), path)
			}
		})
	}
}

func TestTree_AddErrors(t *testing.T) {
	tree, _ := newMemTree(t, map[string]string{"/src/app": "app"})

	t.Run("relative target", func(t *testing.T) {
		err := tree.Add("/src/app", "bin/app", rootfs.Preserve)
		require.ErrorIs(t, err, rootfs.ErrRelativeTarget)
	})

	t.Run("missing source", func(t *testing.T) {
		err := tree.Add("/src/missing", "/bin/missing", rootfs.Preserve)
		require.ErrorIs(t, err, fs.ErrNotExist)
	})

	t.Run("must add", func(t *testing.T) {
		assert.Panics(t, func() {
			tree.MustAdd("/src/app", "app", rootfs.Preserve)
		})
	})
}

func TestTree_AddKeepsMode(t *testing.T) {
	source := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(source, "/src/app", []byte("app"), 0o750))

	target := afero.NewMemMapFs()
	tree := rootfs.NewTree(source, target, "/out", discardLogger())

	require.NoError(t, tree.Add("/src/app", "/bin/app", rootfs.Preserve))

	info, err := target.Stat("/out/bin/app")
	require.NoError(t, err)
	assert.Equal(t, fs.FileMode(0o750), info.Mode().Perm())
}

func TestTree_AddOverwrites(t *testing.T) {
	tree, target := newMemTree(t, map[string]string{
		"/src/old": "old",
		"/src/new": "new",
	})

	require.NoError(t, tree.Add("/src/old", "/app", rootfs.Preserve))
	require.NoError(t, tree.Add("/src/new", "/app", rootfs.Preserve))

	actual, err := afero.ReadFile(target, "/out/app")
	require.NoError(t, err)
	assert.Equal(t, "new", string(actual))
}

func setupLinkSource(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()

	outside := filepath.Join(dir, "outside")
	require.NoError(t, os.WriteFile(outside, []byte("outside"), 0o644))

	data := filepath.Join(dir, "data")
	require.NoError(t, os.Mkdir(data, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(data, "file"), []byte("file"), 0o644))
	require.NoError(t, os.Symlink("file", filepath.Join(data, "safe")))
	require.NoError(t, os.Symlink("../outside", filepath.Join(data, "unsafe")))
	require.NoError(t, os.Symlink(outside, filepath.Join(data, "abs")))

	return dir
}

func TestTree_AddSymlinkPolicy(t *testing.T) {
	type entry struct {
		link    string
		content string
	}

	tests := []struct {
		policy   rootfs.SymlinkPolicy
		expected map[string]*entry
	}{
		{
			policy: rootfs.Preserve,
			expected: map[string]*entry{
				"safe":   {link: "file"},
				"unsafe": {link: "../outside"},
				"abs":    {link: "<abs>"},
			},
		},
		{
			policy: rootfs.CopyUnsafe,
			expected: map[string]*entry{
				"safe":   {link: "file"},
				"unsafe": {content: "outside"},
				"abs":    {content: "outside"},
			},
		},
		{
			policy: rootfs.SkipUnsafe,
			expected: map[string]*entry{
				"safe":   {link: "file"},
				"unsafe": nil,
				"abs":    nil,
			},
		},
		{
			policy: rootfs.CopyAll,
			expected: map[string]*entry{
				"safe":   {content: "file"},
				"unsafe": {content: "outside"},
				"abs":    {content: "outside"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.policy.String(), func(t *testing.T) {
			srcDir := setupLinkSource(t)
			outDir := t.TempDir()
			tree := rootfs.NewDirTree(outDir, discardLogger())

			err := tree.Add(filepath.Join(srcDir, "data"), "/data", tt.policy)
			require.NoError(t, err)

			content, err := os.ReadFile(filepath.Join(outDir, "data", "file"))
			require.NoError(t, err)
			assert.Equal(t, "file", string(content))

			for name, expected := range tt.expected {
				path := filepath.Join(outDir, "data", name)

				info, err := os.Lstat(path)
				if expected == nil {
					require.ErrorIs(t, err, fs.ErrNotExist, name)
					continue
				}

				require.NoError(t, err, name)

				if expected.link != "" {
					require.Equal(t, fs.ModeSymlink, info.Mode().Type(), name)

					target, err := os.Readlink(path)
					require.NoError(t, err)

					expectedLink := expected.link
					if expectedLink == "<abs>" {
						expectedLink = filepath.Join(srcDir, "outside")
					}

					assert.Equal(t, expectedLink, target, name)

					continue
				}

				require.True(t, info.Mode().IsRegular(), name)

				content, err := os.ReadFile(path)
				require.NoError(t, err)
				assert.Equal(t, expected.content, string(content), name)
			}
		})
	}
}

func TestTree_AddSymlinkFile(t *testing.T) {
	srcDir := setupLinkSource(t)
	link := filepath.Join(srcDir, "data", "safe")

	t.Run("preserve", func(t *testing.T) {
		outDir := t.TempDir()
		tree := rootfs.NewDirTree(outDir, discardLogger())

		require.NoError(t, tree.Add(link, "/lib/libfoo.so", rootfs.Preserve))

		target, err := os.Readlink(filepath.Join(outDir, "lib", "libfoo.so"))
		require.NoError(t, err)
		assert.Equal(t, "file", target)
	})

	t.Run("copy all", func(t *testing.T) {
		outDir := t.TempDir()
		tree := rootfs.NewDirTree(outDir, discardLogger())

		require.NoError(t, tree.Add(link, "/lib/libfoo.so", rootfs.CopyAll))

		content, err := os.ReadFile(filepath.Join(outDir, "lib", "libfoo.so"))
		require.NoError(t, err)
		assert.Equal(t, "file", string(content))
	})
}

func TestTree_AddSymlinkUnsupported(t *testing.T) {
	srcDir := setupLinkSource(t)
	tree := rootfs.NewTree(afero.NewOsFs(), afero.NewMemMapFs(), "/", discardLogger())

	err := tree.Add(filepath.Join(srcDir, "data", "safe"), "/safe", rootfs.Preserve)
	require.ErrorIs(t, err, afero.ErrNoSymlink)
}
