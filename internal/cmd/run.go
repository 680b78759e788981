// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/aibor/dockerize/internal/dockerize"
)

const localConfigFile = ".dockerize-args"

// Exit codes of [Run].
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// IO provides output details for the command.
type IO struct {
	Stdout io.Writer
	Stderr io.Writer
}

func parseFlags(args []string, fsys fs.FS, cfg IO) (*flags, error) {
	args, err := MergedArgs(args, fsys, localConfigFile)
	if err != nil {
		return nil, err
	}

	flags := newFlags(cfg.Stderr)

	err = flags.parseArgs(args)
	if err != nil {
		return nil, err
	}

	return flags, nil
}

func handleParseArgsError(err error) int {
	// [ErrHelp] is returned when help is requested. So exit without error
	// in this case.
	if errors.Is(err, ErrHelp) {
		return ExitOK
	}

	// Flag parsing already prints errors, so we just exit with an error.
	if !errors.Is(err, &ParseArgsError{}) {
		slog.Error(err.Error())
	}

	return ExitUsage
}

func handleRunError(err error) int {
	if errors.Is(err, context.Canceled) {
		slog.Warn("Canceled")
		return ExitError
	}

	slog.Error("Build failed", slog.Any("error", err))

	return ExitError
}

// Run is the main entry point for the CLI command. The args must not contain
// the program name.
func Run(ctx context.Context, args []string, cfg IO) int {
	setupLogging(cfg.Stderr, false)

	flags, err := parseFlags(args, os.DirFS("."), cfg)
	if err != nil {
		return handleParseArgsError(err)
	}

	setupLogging(cfg.Stderr, flags.debug)

	spec := flags.spec
	spec.Stdout = cfg.Stdout
	spec.Stderr = cfg.Stderr

	err = dockerize.Build(ctx, &spec)
	if err != nil {
		return handleRunError(err)
	}

	return ExitOK
}
