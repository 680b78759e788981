// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package manifest

import (
	"bufio"
	"fmt"
	"io/fs"
	"strings"
)

const (
	passwdFile = "etc/passwd"
	groupFile  = "etc/group"

	passwdGIDField = 3
	groupGIDField  = 2
)

// LookupUser returns the passwd entry of the user with the given name and
// the group entry of its primary group from the passwd and group files in
// fsys.
//
// If name contains a colon, it is considered a complete passwd entry and is
// returned verbatim without any group entry.
func LookupUser(fsys fs.FS, name string) (string, string, error) {
	if strings.Contains(name, ":") {
		return name, "", nil
	}

	user, found, err := findEntry(fsys, passwdFile, 0, name)
	if err != nil {
		return "", "", err
	}

	if !found {
		return "", "", fmt.Errorf("%w: %s", ErrUnknownUser, name)
	}

	gid := entryField(user, passwdGIDField)

	group, found, err := findEntry(fsys, groupFile, groupGIDField, gid)
	if err != nil {
		return "", "", err
	}

	if !found {
		return "", "", fmt.Errorf("%w: gid %s of user %s", ErrUnknownGroup, gid, name)
	}

	return user, group, nil
}

// LookupGroup returns the group entry of the group with the given name from
// the group file in fsys.
//
// If name contains a colon, it is considered a complete group entry and is
// returned verbatim.
func LookupGroup(fsys fs.FS, name string) (string, error) {
	if strings.Contains(name, ":") {
		return name, nil
	}

	group, found, err := findEntry(fsys, groupFile, 0, name)
	if err != nil {
		return "", err
	}

	if !found {
		return "", fmt.Errorf("%w: %s", ErrUnknownGroup, name)
	}

	return group, nil
}

// findEntry returns the first entry of the colon separated database file
// whose field with the given index equals value.
func findEntry(fsys fs.FS, file string, field int, value string) (string, bool, error) {
	f, err := fsys.Open(file)
	if err != nil {
		return "", false, fmt.Errorf("open database: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if entryField(line, field) == value {
			return line, true, nil
		}
	}

	err = scanner.Err()
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", file, err)
	}

	return "", false, nil
}

func entryField(entry string, idx int) string {
	fields := strings.Split(entry, ":")
	if idx >= len(fields) {
		return ""
	}

	return fields[idx]
}
