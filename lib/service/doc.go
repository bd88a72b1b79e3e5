// Copyright 2026 The Pushwire Authors
// SPDX-License-Identifier: Apache-2.0

// Package service provides the HTTP listener lifecycle for the relay:
// bind the TCP listener, signal readiness, serve, and drain in-flight
// requests on shutdown.
//
// The binary composes [HTTPServer] with its own handler in main()
// rather than subclassing a framework. The package provides a building
// block, not a runtime.
package service
