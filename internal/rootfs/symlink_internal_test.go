// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package rootfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsUnsafeLink(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		target   string
		expected bool
	}{
		{
			name:   "same directory",
			path:   "/src/data/link",
			target: "file",
		},
		{
			name:   "sub directory",
			path:   "/src/data/link",
			target: "sub/file",
		},
		{
			name:   "up and down again",
			path:   "/src/data/sub/link",
			target: "../file",
		},
		{
			name:     "absolute",
			path:     "/src/data/link",
			target:   "/src/data/file",
			expected: true,
		},
		{
			name:     "outside",
			path:     "/src/data/link",
			target:   "../file",
			expected: true,
		},
		{
			name:     "root parent",
			path:     "/src/data/link",
			target:   "..",
			expected: true,
		},
		{
			name:   "dotted name",
			path:   "/src/data/link",
			target: "..file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual := isUnsafeLink("/src/data", tt.path, tt.target)
			assert.Equal(t, tt.expected, actual)
		})
	}
}
