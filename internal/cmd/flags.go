// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"flag"
	"fmt"
	"io"
	"runtime/debug"
	"strings"

	"github.com/aibor/dockerize/internal/dockerize"
	"github.com/aibor/dockerize/internal/sys"
)

const (
	name = "dockerize"

	jobsMax = 256

	usageMessage = `Usage of 'dockerize':
    dockerize [flags...] binary [binary...]

Build a minimal container image containing the given binaries, the shared
objects they need and a basic /etc:
	dockerize -tag myapp:latest /usr/bin/myapp

Only stage the image content into a directory:
	dockerize -no-build -output ./rootfs /usr/bin/myapp

All dockerize flags can also be provided via environment variable
DOCKERIZE_ARGS:
	DOCKERIZE_ARGS="-debug -builder podman" dockerize /usr/bin/myapp

All dockerize flags can also be provided via file ./.dockerize-args, with one
argument per line.
`
)

type flags struct {
	spec    dockerize.Spec
	flagSet *flag.FlagSet

	noBuild bool
	version bool
	debug   bool
}

func newFlags(output io.Writer) *flags {
	flags := &flags{
		spec: dockerize.Spec{
			Builder: dockerize.DefaultBuilder,
			Reader:  dockerize.ReaderELF,
		},
	}

	flags.initFlagset(output)

	return flags
}

// parseArgs parses the given arguments, which must not contain the program
// name.
func (f *flags) parseArgs(args []string) error {
	err := f.flagSet.Parse(args)
	if err != nil {
		return &ParseArgsError{msg: "flag parse", err: err}
	}

	// With version flag, just print the version and exit. Using [ErrHelp]
	// the main binary is supposed to return with a non error exit code.
	if f.version {
		err := f.printVersionInformation()
		return &ParseArgsError{msg: "version requested", err: err}
	}

	positionalArgs := f.flagSet.Args()
	if len(positionalArgs) < 1 {
		return f.fail("no binary given", nil)
	}

	f.spec.Binaries = positionalArgs
	f.spec.Build = !f.noBuild

	if f.spec.Entrypoint == "" && f.spec.Cmd == "" {
		binary, err := sys.AbsolutePath(positionalArgs[0])
		if err != nil {
			return f.fail("binary path", err)
		}

		f.spec.Entrypoint = shellQuote(binary)
	}

	return nil
}

func (f *flags) initFlagset(output io.Writer) {
	flagSet := flag.NewFlagSet(name, flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = f.usage

	flagSet.StringVar(
		&f.spec.Tag,
		"tag",
		f.spec.Tag,
		"tag of the built image",
	)

	flagSet.StringVar(
		&f.spec.Cmd,
		"cmd",
		f.spec.Cmd,
		"CMD of the image, split into words like a shell does",
	)

	flagSet.StringVar(
		&f.spec.Entrypoint,
		"entrypoint",
		f.spec.Entrypoint,
		"ENTRYPOINT of the image, split into words like a shell does "+
			"(default is the first binary, unless -cmd is given)",
	)

	flagSet.StringVar(
		&f.spec.TargetDir,
		"output",
		f.spec.TargetDir,
		"directory the image content is staged in (default is a temporary "+
			"directory that is removed afterwards)",
	)

	flagSet.BoolVar(
		&f.noBuild,
		"no-build",
		f.noBuild,
		"only stage the image content, do not build the image",
	)

	flagSet.StringVar(
		&f.spec.Builder,
		"builder",
		f.spec.Builder,
		"container image builder to run with \"build\" sub command",
	)

	flagSet.Var(
		(*fileSpecList)(&f.spec.Files),
		"add-file",
		"additional file in the form src[:dst]. The source may be a glob "+
			"pattern. Flag may be used more than once. Empty value clears "+
			"the list.",
	)

	flagSet.Var(
		(*stringList)(&f.spec.Users),
		"user",
		"user name or passwd entry to add to /etc/passwd. Flag may be used "+
			"more than once.",
	)

	flagSet.Var(
		(*stringList)(&f.spec.Groups),
		"group",
		"group name or group entry to add to /etc/group. Flag may be used "+
			"more than once.",
	)

	flagSet.Var(
		&f.spec.Symlinks,
		"symlinks",
		"handling of symbolic links in binaries and files: preserve, "+
			"copy-unsafe, skip-unsafe, copy-all",
	)

	flagSet.StringVar(
		&f.spec.Archive,
		"archive",
		f.spec.Archive,
		"write the image content as CPIO archive to this file",
	)

	flagSet.StringVar(
		&f.spec.Reader,
		"reader",
		f.spec.Reader,
		"section reader for finding the ELF interpreter: elf, objdump",
	)

	flagSet.Var(
		&limitedIntValue{
			Value: &f.spec.Jobs,
			min:   0,
			max:   jobsMax,
		},
		"jobs",
		"number of files resolved in parallel (default is the number of CPUs)",
	)

	flagSet.BoolVar(
		&f.debug,
		"debug",
		f.debug,
		"enable debug output",
	)

	flagSet.BoolVar(
		&f.version,
		"version",
		f.version,
		"show version and exit",
	)

	f.flagSet = flagSet
}

// fail fails like flag does. It prints the error first and then usage.
func (f *flags) fail(msg string, err error) error {
	err = &ParseArgsError{msg: msg, err: err}
	fmt.Fprintln(f.flagSet.Output(), err.Error())

	f.flagSet.Usage()

	return err
}

func (f *flags) printVersionInformation() error {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return ErrReadBuildInfo
	}

	fmt.Fprintf(f.flagSet.Output(), "Version: %s\n", buildInfo.Main.Version)

	return ErrHelp
}

func (f *flags) usage() {
	fmt.Fprint(f.flagSet.Output(), usageMessage)
	fmt.Fprintln(f.flagSet.Output(), "\nFlags:")
	f.flagSet.PrintDefaults()
}

// shellQuote quotes s so it is split into a single word.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
