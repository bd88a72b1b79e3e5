// Copyright 2026 The Pushwire Authors
// SPDX-License-Identifier: Apache-2.0

// Command pushwire is a GitLab webhook relay: it listens for push
// webhooks, verifies the shared secret token, and posts a one-line
// notification about the newest commit to a Matrix room.
//
// Configuration comes from environment variables (PUSHWIRE_LISTEN,
// GITLAB_TOKEN, MATRIX_SERVER, MATRIX_USER, MATRIX_PASSWORD,
// MATRIX_ROOM_ID, MATRIX_DEVICE_ID) or a YAML file given with
// --config. Secrets are only ever read from the environment, with
// _FILE variants for file-based secret mounts.
package main
