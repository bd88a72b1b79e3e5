// Copyright 2026 The Pushwire Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil provides bounded HTTP response readers.
//
// ReadResponse and DecodeResponse cap response body reads at
// MaxResponseSize to prevent unbounded memory allocation from a
// misbehaving or malicious server. They are for JSON API responses
// (the Matrix client-server API), not for streaming transfers.
package netutil

import (
	"encoding/json"
	"fmt"
	"io"
)

// MaxResponseSize is the bound on JSON API response body reads: 4 MB.
// Matrix client-server responses the relay consumes (login, send,
// whoami, error bodies) are all tiny; the limit exists solely so a
// pathological response cannot exhaust memory.
const MaxResponseSize int64 = 4 << 20

// ReadResponse reads a JSON API response body up to MaxResponseSize bytes.
// Use instead of io.ReadAll when reading HTTP response bodies.
func ReadResponse(body io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(body, MaxResponseSize))
}

// DecodeResponse reads a JSON API response body (up to MaxResponseSize
// bytes) and JSON-decodes it into v. Replaces the common io.ReadAll +
// json.Unmarshal pattern.
func DecodeResponse(body io.Reader, v any) error {
	data, err := io.ReadAll(io.LimitReader(body, MaxResponseSize))
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	return json.Unmarshal(data, v)
}
