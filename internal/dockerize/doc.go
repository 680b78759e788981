// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package dockerize builds minimal container images from dynamically linked
// binaries.
//
// The binaries and additional files are staged into a directory together
// with all shared objects they need at runtime. A Dockerfile is generated
// that copies the directory into an empty image.
package dockerize
