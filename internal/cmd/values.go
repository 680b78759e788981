// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"strings"

	"github.com/aibor/dockerize/internal/dockerize"
)

// fileSpecList is a [flag.Value] that collects file specs in the form
// "src[:dst]". An empty value clears the list.
type fileSpecList []dockerize.FileSpec

func (f *fileSpecList) String() string {
	specs := make([]string, len(*f))
	for idx, spec := range *f {
		specs[idx] = spec.String()
	}

	return strings.Join(specs, ",")
}

func (f *fileSpecList) Set(s string) error {
	if s == "" {
		*f = nil
		return nil
	}

	spec, err := dockerize.ParseFileSpec(s)
	if err != nil {
		return err //nolint:wrapcheck
	}

	*f = append(*f, spec)

	return nil
}

// stringList is a [flag.Value] that collects all values it is set to. An
// empty value clears the list.
type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(value string) error {
	if value == "" {
		*s = nil
		return nil
	}

	*s = append(*s, value)

	return nil
}
