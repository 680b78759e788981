// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd_test

import (
	"testing"
	"testing/fstest"

	"github.com/aibor/dockerize/internal/cmd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvArgs(t *testing.T) {
	tests := []struct {
		name   string
		env    string
		output []string
	}{
		{
			name:   "empty",
			env:    "",
			output: []string{},
		},
		{
			name:   "multiple args",
			env:    "-builder podman -debug",
			output: []string{"-builder", "podman", "-debug"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DOCKERIZE_ARGS", tt.env)
			assert.Equal(t, tt.output, cmd.EnvArgs())
		})
	}
}

func TestLocalConfigArgs(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		env      map[string]string
		expected []string
	}{
		{
			name:     "empty",
			content:  "",
			expected: []string{},
		},
		{
			name:     "single line",
			content:  "-tag=app\n-cmd=serve --port 80",
			expected: []string{"-tag=app", "-cmd=serve --port 80"},
		},
		{
			name:     "multiple lines",
			content:  "-tag\napp\n\n# comment\n-no-build\n",
			expected: []string{"-tag", "app", "-no-build"},
		},
		{
			name:     "with env vars",
			content:  "-tag=${NAME}:${VERSION:-latest}\n-output=$DIR/out\n-archive=${UNSET}/a.cpio\n",
			env:      map[string]string{"NAME": "app", "DIR": "/tmp"},
			expected: []string{"-tag=app:latest", "-output=/tmp/out", "-archive=/a.cpio"},
		},
		{
			name:     "bare env vars",
			content:  "$DIR/out\n-tag=$NAME:${VERSION:-latest}\n-cmd=run ${NAME}_$NAME\n",
			env:      map[string]string{"NAME": "app", "DIR": "/tmp"},
			expected: []string{"/tmp/out", "-tag=app:latest", "-cmd=run app_app"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testFS := fstest.MapFS{
				"conf": &fstest.MapFile{
					Data: []byte(tt.content),
				},
			}

			t.Setenv("UNSET", "")
			t.Setenv("VERSION", "")

			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			args, err := cmd.LocalConfigArgs(testFS, "conf")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, args)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		args, err := cmd.LocalConfigArgs(fstest.MapFS{}, "conf")
		require.NoError(t, err)
		assert.Empty(t, args)
	})
}

func TestMergedArgs(t *testing.T) {
	testFS := fstest.MapFS{
		"conf": &fstest.MapFile{Data: []byte("-tag=local\n")},
	}

	t.Setenv("DOCKERIZE_ARGS", "-tag=env -debug")

	args, err := cmd.MergedArgs([]string{"-tag=cli", "/bin/app"}, testFS, "conf")
	require.NoError(t, err)

	expected := []string{"-tag=local", "-tag=env", "-debug", "-tag=cli", "/bin/app"}
	assert.Equal(t, expected, args)
}
