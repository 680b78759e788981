// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package rootfs

import (
	"path/filepath"
	"strings"
)

// SymlinkPolicy defines how symbolic links are handled when files are staged.
//
// A link is unsafe if its target is absolute or if it points outside of the
// tree that is copied.
type SymlinkPolicy int

// Supported symlink policies.
const (
	// Preserve recreates all links as they are.
	Preserve SymlinkPolicy = iota
	// CopyUnsafe copies the files unsafe links point to instead of the link.
	CopyUnsafe
	// SkipUnsafe ignores unsafe links.
	SkipUnsafe
	// CopyAll copies the files all links point to instead of the links.
	CopyAll
)

var symlinkPolicyNames = map[SymlinkPolicy]string{
	Preserve:   "preserve",
	CopyUnsafe: "copy-unsafe",
	SkipUnsafe: "skip-unsafe",
	CopyAll:    "copy-all",
}

func (p *SymlinkPolicy) String() string {
	name, exists := symlinkPolicyNames[*p]
	if !exists {
		return "unknown"
	}

	return name
}

// Set sets the policy by its name. It implements [flag.Value].
func (p *SymlinkPolicy) Set(s string) error {
	for policy, name := range symlinkPolicyNames {
		if name == s {
			*p = policy
			return nil
		}
	}

	return ErrSymlinkPolicyUnknown
}

// isUnsafeLink checks if a link located at path with the given target points
// outside of root.
func isUnsafeLink(root, path, target string) bool {
	if filepath.IsAbs(target) {
		return true
	}

	resolved := filepath.Join(filepath.Dir(path), target)

	rel, err := filepath.Rel(root, resolved)
	if err != nil {
		return true
	}

	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
