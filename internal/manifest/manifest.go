// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package manifest

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"path/filepath"
	"slices"
	"text/template"

	"github.com/google/shlex"
	"github.com/spf13/afero"
)

//go:embed templates
var _templates embed.FS

//nolint:gochecknoglobals
var templates = template.Must(
	template.New("manifest").
		Funcs(template.FuncMap{"execForm": execForm}).
		ParseFS(_templates, "templates/*"),
)

//nolint:gochecknoglobals
var (
	defaultUsers = []string{
		"root:x:0:0:root:/root:/bin/sh",
		"nobody:x:65534:65534:nobody:/nonexistent:/sbin/nologin",
	}
	defaultGroups = []string{
		"root:x:0:",
		"nobody:x:65534:",
	}
)

// Files generated into the image and their template names.
//
//nolint:gochecknoglobals
var files = map[string]string{
	"Dockerfile":        "Dockerfile",
	"etc/passwd":        "passwd",
	"etc/group":         "group",
	"etc/nsswitch.conf": "nsswitch.conf",
}

const (
	fileMode = 0o644
	dirPerm  = 0o755
)

// Manifests collects the content of the generated files.
type Manifests struct {
	// Entrypoint of the image in exec form.
	Entrypoint []string

	// Cmd of the image in exec form.
	Cmd []string

	// Users are passwd entries added in addition to root and nobody.
	Users []string

	// Groups are group entries added in addition to root and nobody.
	Groups []string
}

// AddUser looks up the user in fsys with [LookupUser] and adds its passwd
// and group entries.
func (m *Manifests) AddUser(fsys fs.FS, name string) error {
	user, group, err := LookupUser(fsys, name)
	if err != nil {
		return err
	}

	m.Users = append(m.Users, user)

	if group != "" {
		m.Groups = append(m.Groups, group)
	}

	return nil
}

// AddGroup looks up the group in fsys with [LookupGroup] and adds its group
// entry.
func (m *Manifests) AddGroup(fsys fs.FS, name string) error {
	group, err := LookupGroup(fsys, name)
	if err != nil {
		return err
	}

	m.Groups = append(m.Groups, group)

	return nil
}

// Render renders the template with the given name into w.
func (m *Manifests) Render(w io.Writer, name string) error {
	data := struct {
		Entrypoint []string
		Cmd        []string
		Users      []string
		Groups     []string
	}{
		Entrypoint: m.Entrypoint,
		Cmd:        m.Cmd,
		Users:      mergeEntries(defaultUsers, m.Users),
		Groups:     mergeEntries(defaultGroups, m.Groups),
	}

	err := templates.ExecuteTemplate(w, name, data)
	if err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}

	return nil
}

// Write renders all files into fsys relative to the given root directory.
func (m *Manifests) Write(fsys afero.Fs, root string) error {
	for _, path := range slices.Sorted(maps.Keys(files)) {
		var buf bytes.Buffer

		err := m.Render(&buf, files[path])
		if err != nil {
			return err
		}

		hostPath := filepath.Join(root, path)

		err = fsys.MkdirAll(filepath.Dir(hostPath), dirPerm)
		if err != nil {
			return fmt.Errorf("create directory for %s: %w", path, err)
		}

		err = afero.WriteReader(fsys, hostPath, &buf)
		if err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}

		err = fsys.Chmod(hostPath, fileMode)
		if err != nil {
			return fmt.Errorf("set mode of %s: %w", path, err)
		}
	}

	return nil
}

// SplitCommand splits the command line into words using shell quoting rules.
func SplitCommand(cmdline string) ([]string, error) {
	words, err := shlex.Split(cmdline)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCommand, err)
	}

	return words, nil
}

// mergeEntries merges entries into the defaults. Entries replace defaults
// with the same name. Only the first entry of each name is kept.
func mergeEntries(defaults, entries []string) []string {
	merged := make([]string, 0, len(defaults)+len(entries))
	seen := make(map[string]struct{}, cap(merged))

	add := func(entry string) {
		name := entryField(entry, 0)
		if _, exists := seen[name]; exists {
			return
		}

		seen[name] = struct{}{}
		merged = append(merged, entry)
	}

	for _, entry := range defaults {
		idx := slices.IndexFunc(entries, func(e string) bool {
			return entryField(e, 0) == entryField(entry, 0)
		})
		if idx >= 0 {
			entry = entries[idx]
		}

		add(entry)
	}

	for _, entry := range entries {
		add(entry)
	}

	return merged
}

// execForm encodes the words as JSON array as used by the exec form of
// Dockerfile instructions.
func execForm(words []string) (string, error) {
	var buf bytes.Buffer

	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)

	err := encoder.Encode(words)
	if err != nil {
		return "", fmt.Errorf("encode: %w", err)
	}

	return string(bytes.TrimSpace(buf.Bytes())), nil
}
