// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"slices"
	"strings"

	"github.com/drone/envsubst"
)

const envArgsVar = "DOCKERIZE_ARGS"

// bareVarPattern matches variable references without braces, like $HOME.
//
//nolint:gochecknoglobals
var bareVarPattern = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)

// EnvArgs returns dockerize arguments from the environment.
func EnvArgs() []string {
	return strings.Fields(os.Getenv(envArgsVar))
}

// LocalConfigArgs returns dockerize arguments from a local config file.
//
// The file's format is one argument per line. Empty lines and lines starting
// with "#" are ignored. Environment variables may be used as $VAR or ${VAR}
// and are expanded with [envsubst.EvalEnv], so defaults like
// ${VAR:-default} are supported as well.
func LocalConfigArgs(fsys fs.FS, file string) ([]string, error) {
	conf, err := fs.ReadFile(fsys, file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("read file: %w", err)
	}

	expandedConf, err := expandEnv(string(conf))
	if err != nil {
		return nil, fmt.Errorf("expand %s: %w", file, err)
	}

	args := []string{}

	for line := range strings.SplitSeq(expandedConf, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") {
			args = append(args, line)
		}
	}

	return args, nil
}

// expandEnv expands environment variables in both forms. envsubst only
// handles the braced one, so bare references are braced first.
func expandEnv(s string) (string, error) {
	return envsubst.EvalEnv(bareVarPattern.ReplaceAllString(s, "$${$1}")) //nolint:wrapcheck
}

// MergedArgs returns the arguments of the local config file, the environment
// and the given arguments, in this order. So later ones take precedence for
// flags that can only be given once.
func MergedArgs(args []string, fsys fs.FS, file string) ([]string, error) {
	localArgs, err := LocalConfigArgs(fsys, file)
	if err != nil {
		return nil, &ParseArgsError{msg: "local config", err: err}
	}

	return slices.Concat(localArgs, EnvArgs(), args), nil
}
