// Copyright 2026 The Pushwire Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides binary entrypoint helpers for the pushwire
// service binary. It centralizes the one legitimate raw I/O pattern
// that exists before the structured logger: fatal error reporting to
// stderr during startup, when configuration loading or listener setup
// fails and no slog handler has been installed yet.
package process
