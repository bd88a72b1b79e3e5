// Copyright 2026 The Pushwire Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"bytes"
	"fmt"
	"os"
)

// ReadFromPath reads a secret from a file path. The returned buffer is
// mmap-backed (locked into RAM, excluded from core dumps) and must be
// closed by the caller. Leading/trailing whitespace is trimmed before
// storing — credential files routinely carry a trailing newline. Returns
// an error if the file is empty after trimming.
func ReadFromPath(path string) (*Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		Zero(data)
		return nil, fmt.Errorf("secret file %s is empty", path)
	}

	// NewFromBytes copies into mmap-backed memory and zeros trimmed.
	buffer, err := NewFromBytes(trimmed)
	// Zero remaining bytes (whitespace prefix/suffix) not covered by trimmed.
	Zero(data)
	if err != nil {
		return nil, err
	}
	return buffer, nil
}

// ReadFromEnv reads a secret from the environment variable name, or from
// the file named by name_FILE when the plain variable is unset. Setting
// both is a configuration error — there must be exactly one source of
// truth for a credential. Returns (nil, nil) when neither is set, so the
// caller decides whether the secret is required.
func ReadFromEnv(name string) (*Buffer, error) {
	value, haveValue := os.LookupEnv(name)
	path, havePath := os.LookupEnv(name + "_FILE")

	switch {
	case haveValue && havePath:
		return nil, fmt.Errorf("both %s and %s_FILE are set; use exactly one", name, name)
	case haveValue:
		if value == "" {
			return nil, fmt.Errorf("%s is set but empty", name)
		}
		return NewFromBytes([]byte(value))
	case havePath:
		buffer, err := ReadFromPath(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s_FILE: %w", name, err)
		}
		return buffer, nil
	default:
		return nil, nil
	}
}
