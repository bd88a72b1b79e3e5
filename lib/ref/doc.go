// Copyright 2026 The Pushwire Authors
// SPDX-License-Identifier: Apache-2.0

// Package ref provides validated Matrix identifier types.
//
// Raw strings from configuration and homeserver responses are parsed
// into these types at the boundary, so the rest of the relay never
// handles an unvalidated user or room identifier. [UserID] wraps a
// Matrix user ID ("@user:server"); [RoomID] wraps a server-assigned
// room ID ("!opaque:server"). Both are immutable value types whose
// zero value is invalid; use IsZero to check. Both implement
// encoding.TextMarshaler/TextUnmarshaler so JSON deserialization
// validates automatically.
package ref
