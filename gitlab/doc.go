// Copyright 2026 The Pushwire Authors
// SPDX-License-Identifier: Apache-2.0

// Package gitlab defines the GitLab webhook event schemas the relay
// understands and the registry that resolves a declared event type to
// its schema.
//
// GitLab declares the event type in the X-Gitlab-Event header using
// "Hook" names ("Push Hook", "Merge Request Hook"). [ResolveKind] maps
// a header value to a schema [Kind]; [Decode] validates a raw payload
// against the resolved schema and returns the typed event.
//
// The registry is an explicit package-level mapping built at init —
// adding a new supported event type means adding a payload type, one
// registry entry, and a formatter in package notify. Dispatcher control
// flow is untouched.
//
// Decode failures are classified, not collapsed: an unrecognized kind
// is [ErrUnknownEventType] (the caller acknowledges and drops the
// event) and a schema violation is a [*PayloadError] carrying the
// declared kind and the underlying cause for logging.
package gitlab
