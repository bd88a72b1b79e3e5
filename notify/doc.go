// Copyright 2026 The Pushwire Authors
// SPDX-License-Identifier: Apache-2.0

// Package notify turns validated webhook events into chat notices and
// delivers them to the configured Matrix room.
//
// [FormatPush] renders a push event into a [Message] holding a
// plain-text body and its HTML rendering. Both bodies are produced from
// one set of computed values (repository, actor, branch, trimmed commit
// message, commit URL) so the two representations cannot drift apart.
// A push with no commits formats to nothing: the event is a no-op, not
// an error.
//
// [Notifier.Deliver] posts a Message as an m.notice to the room using a
// fresh short-lived session: login, one send, logout. The session is
// released on every exit path, and the whole sequence is bounded by a
// timeout. Failures are classified per stage as [*DeliveryError];
// nothing is retried — delivery is at-most-once.
package notify
