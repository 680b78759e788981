// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import (
	"fmt"
	"strings"
)

// LoaderExecError is returned if the dynamic loader could not be executed or
// returned with a non-zero exit code.
type LoaderExecError struct {
	Interpreter string
	Err         error
	Stderr      string
}

func (e *LoaderExecError) Error() string {
	msg := fmt.Sprintf("loader %s: %v", e.Interpreter, e.Err)

	stderr := strings.TrimSpace(e.Stderr)
	if stderr != "" {
		msg += ": " + stderr
	}

	return msg
}

func (e *LoaderExecError) Is(other error) bool {
	_, ok := other.(*LoaderExecError)
	return ok
}

func (e *LoaderExecError) Unwrap() error {
	return e.Err
}
