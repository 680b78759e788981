// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

const (
	defaultObjdump        = "objdump"
	defaultObjdumpTimeout = 5 * time.Second

	// Idx Name Size VMA LMA File-off Algn
	sectionLineFields = 7
)

var _ Describer = (*ObjdumpReader)(nil)

// ObjdumpReader is a [Describer] that reads the section table from the output
// of "objdump -h".
type ObjdumpReader struct {
	// Tool is the objdump executable. Defaults to "objdump" looked up in PATH.
	Tool string

	// Timeout for a single objdump invocation. Defaults to 5 seconds.
	Timeout time.Duration

	// Logger receives debug messages about rejected lines. Defaults to
	// [slog.Default].
	Logger *slog.Logger
}

// Describe runs objdump for the file at the given path and parses its section
// table.
//
// It returns [ErrToolNotFound] if objdump can not be executed and
// [ErrNotELFFile] if objdump rejects the file.
func (r *ObjdumpReader) Describe(
	ctx context.Context,
	path string,
) (*BinaryDescriptor, error) {
	var out bytes.Buffer

	err := r.run(ctx, path, &out)
	if err != nil {
		return nil, err
	}

	sections := parseSectionTable(&out, r.logger())

	return newBinaryDescriptor(path, sections)
}

func (r *ObjdumpReader) run(ctx context.Context, path string, outW io.Writer) error {
	var stderrBuf bytes.Buffer

	cmdCtx, stop := context.WithTimeout(ctx, r.timeout())
	defer stop()

	cmd := exec.CommandContext(cmdCtx, r.tool(), "-h", path)
	cmd.Stdout = outW
	cmd.Stderr = &stderrBuf

	err := cmd.Run()
	if err == nil {
		return nil
	}

	switch {
	case ctx.Err() != nil:
		return fmt.Errorf("objdump: %w", ctx.Err())
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %w", ErrToolNotFound, err)
	default:
		return fmt.Errorf("%w: objdump: %v: %s", ErrNotELFFile, err,
			strings.TrimSpace(stderrBuf.String()))
	}
}

func (r *ObjdumpReader) tool() string {
	if r.Tool == "" {
		return defaultObjdump
	}

	return r.Tool
}

func (r *ObjdumpReader) timeout() time.Duration {
	if r.Timeout <= 0 {
		return defaultObjdumpTimeout
	}

	return r.Timeout
}

func (r *ObjdumpReader) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}

	return r.Logger
}

// parseSectionTable parses the output of "objdump -h". Only lines that start
// with a section index are considered. Lines that do not match the section
// line format are skipped.
func parseSectionTable(r io.Reader, logger *slog.Logger) map[string]SectionRecord {
	sections := make(map[string]SectionRecord)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !isDigit(line[0]) {
			continue
		}

		section, err := parseSectionLine(line)
		if err != nil {
			logger.Debug("Skip section line",
				slog.String("line", line),
				slog.Any("error", err))

			continue
		}

		sections[section.Name] = section
	}

	return sections
}

// parseSectionLine parses a single section line of "objdump -h" output:
//
//	0 .interp       0000001c  0000000000000318  0000000000000318  00000318  2**0
func parseSectionLine(line string) (SectionRecord, error) {
	fields := strings.Fields(line)
	if len(fields) != sectionLineFields {
		return SectionRecord{}, fmt.Errorf("%w: %d fields",
			ErrInvalidSectionLine, len(fields))
	}

	_, err := strconv.ParseUint(fields[0], 10, 32)
	if err != nil {
		return SectionRecord{}, fmt.Errorf("%w: index: %w",
			ErrInvalidSectionLine, err)
	}

	size, err := parseHex("size", fields[2])
	if err != nil {
		return SectionRecord{}, err
	}

	_, err = parseHex("vma", fields[3])
	if err != nil {
		return SectionRecord{}, err
	}

	_, err = parseHex("lma", fields[4])
	if err != nil {
		return SectionRecord{}, err
	}

	offset, err := parseHex("file offset", fields[5])
	if err != nil {
		return SectionRecord{}, err
	}

	exp, found := strings.CutPrefix(fields[6], "2**")
	if !found {
		return SectionRecord{}, fmt.Errorf("%w: alignment: %s",
			ErrInvalidSectionLine, fields[6])
	}

	_, err = strconv.ParseUint(exp, 10, 8)
	if err != nil {
		return SectionRecord{}, fmt.Errorf("%w: alignment: %w",
			ErrInvalidSectionLine, err)
	}

	return SectionRecord{
		Name:   fields[1],
		Offset: offset,
		Size:   size,
	}, nil
}

func parseHex(field, value string) (uint64, error) {
	parsed, err := strconv.ParseUint(value, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrInvalidSectionLine, field, err)
	}

	return parsed, nil
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}
