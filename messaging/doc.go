// Copyright 2026 The Pushwire Authors
// SPDX-License-Identifier: Apache-2.0

// Package messaging wraps the slice of the Matrix client-server API the
// relay needs: password login, sending a room message, and logout.
//
// [Client] is an unauthenticated Matrix client holding the homeserver
// URL and HTTP transport. [Client.Login] authenticates with a password
// and returns a [Session], which sends m.room.message events via the
// idempotent PUT /send endpoint (one transaction ID per event) and is
// torn down with [Session.Logout] and [Session.Close]. The access token
// lives in an mmap-backed secret buffer for the session's lifetime;
// Close zeroes and releases it.
//
// All homeserver error responses are returned as [*MatrixError] with
// the standard Matrix error code (M_FORBIDDEN, M_UNKNOWN_TOKEN, ...)
// and HTTP status code; [IsMatrixError] tests for a specific code.
// Request URLs are built by string concatenation rather than url.URL
// to avoid double-encoding of path segments.
package messaging
