// Copyright 2026 The Pushwire Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret provides a memory-safe buffer for sensitive data: the
// inbound webhook token and the Matrix account password and access token.
//
// [Buffer] allocates memory outside the Go heap via mmap(MAP_ANONYMOUS),
// locks it into physical RAM via mlock (preventing swap), and marks it
// excluded from core dumps via madvise(MADV_DONTDUMP). On Close, the
// memory is zeroed, unlocked, and unmapped. Because the memory lives
// outside the Go heap, the garbage collector cannot copy or relocate
// it, guaranteeing secret material does not persist after release.
//
// Constructors:
//
//   - [New] -- allocates a zero-filled buffer of a given size
//   - [NewFromBytes] -- copies into protected memory, zeros the source
//   - [ReadFromPath] -- reads a trimmed secret from a file
//   - [ReadFromEnv] -- reads from VAR or a file named by VAR_FILE
//
// Access via [Buffer.Bytes] (slice into the mmap region) or
// [Buffer.String] (heap copy for API boundaries). [Buffer.EqualString]
// compares against a presented value in constant time, for the inbound
// token check. After Close, any access panics. Close is idempotent.
//
// Depends on golang.org/x/sys/unix. No pushwire-internal dependencies.
package secret
