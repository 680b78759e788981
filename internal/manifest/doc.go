// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package manifest renders the files that are generated for a container
// image: the Dockerfile and the account and name service configuration in
// /etc.
package manifest
