// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"fmt"
	"strconv"
)

type limitedIntValue struct {
	Value    *int
	min, max int
}

func (i *limitedIntValue) String() string {
	if i.Value == nil {
		return "0"
	}

	return strconv.Itoa(*i.Value)
}

func (i *limitedIntValue) Set(s string) error {
	value, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	if value < i.min {
		return fmt.Errorf("%d < %d: %w", value, i.min, ErrValueOutOfRange)
	}

	if i.max > 0 && value > i.max {
		return fmt.Errorf("%d > %d: %w", value, i.max, ErrValueOutOfRange)
	}

	*i.Value = value

	return nil
}
