// Copyright 2026 The Pushwire Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"bytes"
	"testing"
)

func TestNewFromBytesZerosSource(t *testing.T) {
	source := []byte("hunter2")
	buffer, err := NewFromBytes(source)
	if err != nil {
		t.Fatalf("NewFromBytes: %v", err)
	}
	defer buffer.Close()

	if !bytes.Equal(source, make([]byte, len(source))) {
		t.Error("source slice was not zeroed")
	}
	if buffer.String() != "hunter2" {
		t.Errorf("buffer contents = %q, want %q", buffer.String(), "hunter2")
	}
	if buffer.Len() != 7 {
		t.Errorf("Len() = %d, want 7", buffer.Len())
	}
}

func TestNewFromBytesRejectsEmpty(t *testing.T) {
	if _, err := NewFromBytes(nil); err == nil {
		t.Error("NewFromBytes(nil) did not return an error")
	}
	if _, err := NewFromBytes([]byte{}); err == nil {
		t.Error("NewFromBytes(empty) did not return an error")
	}
}

func TestEqualString(t *testing.T) {
	buffer, err := NewFromBytes([]byte("correct-token"))
	if err != nil {
		t.Fatalf("NewFromBytes: %v", err)
	}
	defer buffer.Close()

	tests := []struct {
		name      string
		presented string
		want      bool
	}{
		{"match", "correct-token", true},
		{"mismatch", "wrong-token", false},
		{"empty", "", false},
		{"prefix", "correct", false},
		{"longer", "correct-token-plus", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buffer.EqualString(tt.presented); got != tt.want {
				t.Errorf("EqualString(%q) = %v, want %v", tt.presented, got, tt.want)
			}
		})
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	buffer, err := NewFromBytes([]byte("secret"))
	if err != nil {
		t.Fatalf("NewFromBytes: %v", err)
	}

	if err := buffer.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := buffer.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestAccessAfterClosePanics(t *testing.T) {
	buffer, err := NewFromBytes([]byte("secret"))
	if err != nil {
		t.Fatalf("NewFromBytes: %v", err)
	}
	buffer.Close()

	defer func() {
		if r := recover(); r == nil {
			t.Error("Bytes() on closed buffer did not panic")
		}
	}()
	buffer.Bytes()
}
