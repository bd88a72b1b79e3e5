// Copyright 2026 The Pushwire Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for the pushwire relay.
//
// Configuration comes from exactly one explicit source, chosen at
// startup: the process environment ([Load]) or a YAML file ([LoadFile],
// selected via --config or PUSHWIRE_CONFIG). There is no fallback
// merging between the two — deterministic, auditable configuration
// with no hidden overrides.
//
// Credentials (the inbound GitLab token and the Matrix password) are
// never read from the YAML file. They always come from the environment,
// either directly (GITLAB_TOKEN, MATRIX_PASSWORD) or from files named
// by the _FILE variants, and are held in mmap-backed secret buffers.
//
// The resulting [Config] is immutable and constructed once; a missing
// required value fails startup before the process serves traffic.
package config
