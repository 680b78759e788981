// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package rootfs

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
)

// NSSModules are the name service switch modules glibc loads at runtime for
// the lookups configured in the default nsswitch.conf. They are not linked
// and thus never reported by the dynamic loader.
//
//nolint:gochecknoglobals
var NSSModules = []string{
	"libnss_dns.so.2",
	"libnss_files.so.2",
	"libnss_compat.so.2",
}

// AddNSSModules searches the given directories for [NSSModules] and adds all
// found to the tree at the same path. It returns the container paths of the
// added modules.
func (t *Tree) AddNSSModules(dirs []string) ([]string, error) {
	var added []string

	for _, dir := range dirs {
		for _, name := range NSSModules {
			path := filepath.Join(dir, name)

			_, err := t.source.Stat(path)
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					continue
				}

				return nil, fmt.Errorf("stat NSS module: %w", err)
			}

			t.logger.Debug("Add NSS module", slog.String("path", path))

			err = t.Add(path, path, CopyAll)
			if err != nil {
				return nil, fmt.Errorf("add NSS module %s: %w", path, err)
			}

			added = append(added, path)
		}
	}

	return added, nil
}
