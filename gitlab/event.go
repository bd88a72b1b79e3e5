// Copyright 2026 The Pushwire Authors
// SPDX-License-Identifier: Apache-2.0

package gitlab

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Kind names a recognized event schema. Kinds derive from the
// X-Gitlab-Event header: spaces stripped, the trailing "Hook" mapped to
// "Event" ("Push Hook" becomes "PushEvent").
type Kind string

// KindPush is the push-event schema, the only kind the relay acts on.
const KindPush Kind = "PushEvent"

// Event is a validated webhook event. Implementations are the typed
// payload structs; the dispatcher switches on the concrete type.
type Event interface {
	EventKind() Kind
}

// EventKind implements Event.
func (e *PushEvent) EventKind() Kind { return KindPush }

// ErrUnknownEventType reports a declared event type with no registered
// schema. Not a hard failure: the webhook contract acknowledges event
// types it does not understand so the sender never retries them.
var ErrUnknownEventType = errors.New("gitlab: unknown event type")

// PayloadError reports a payload that does not satisfy its declared
// schema: unparseable JSON, a missing required field, or a malformed
// timestamp. The wrapped cause carries enough detail to log why the
// event was dropped.
type PayloadError struct {
	Kind Kind
	Err  error
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("gitlab: malformed %s payload: %v", e.Kind, e.Err)
}

func (e *PayloadError) Unwrap() error { return e.Err }

// decodeFunc validates a raw payload against one schema.
type decodeFunc func(body []byte) (Event, error)

// registry maps each recognized kind to its schema decoder. Static
// after init; concurrent reads need no locking.
var registry = map[Kind]decodeFunc{
	KindPush: decodePush,
}

// ResolveKind derives the schema kind from an X-Gitlab-Event header
// value: all spaces are stripped and a trailing "Hook" becomes "Event".
// The result is only a name — Decode decides whether it is recognized.
func ResolveKind(header string) Kind {
	name := strings.ReplaceAll(header, " ", "")
	if stem, found := strings.CutSuffix(name, "Hook"); found {
		name = stem + "Event"
	}
	return Kind(name)
}

// Decode validates a raw JSON payload against the schema registered for
// kind. Returns ErrUnknownEventType when no schema is registered, a
// *PayloadError when the payload violates the schema, and the fully
// typed event otherwise.
func Decode(kind Kind, body []byte) (Event, error) {
	decode, registered := registry[kind]
	if !registered {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEventType, kind)
	}
	return decode(body)
}

func decodePush(body []byte) (Event, error) {
	var event PushEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, &PayloadError{Kind: KindPush, Err: err}
	}
	if err := event.validate(); err != nil {
		return nil, &PayloadError{Kind: KindPush, Err: err}
	}
	return &event, nil
}

// validate checks the fields the relay consumes. An empty commit list
// is schema-valid — a push with no commits (branch deletion, tag-only
// push) is a formatter no-op, not a malformed payload.
func (e *PushEvent) validate() error {
	var problems []error
	if e.Ref == "" {
		problems = append(problems, errors.New("ref is required"))
	}
	if e.UserUsername == "" {
		problems = append(problems, errors.New("user_username is required"))
	}
	if e.Project.PathWithNamespace == "" {
		problems = append(problems, errors.New("project.path_with_namespace is required"))
	}
	if e.Project.Homepage == "" {
		problems = append(problems, errors.New("project.homepage is required"))
	}
	for index, commit := range e.Commits {
		if commit.ID == "" {
			problems = append(problems, fmt.Errorf("commits[%d].id is required", index))
		}
		if commit.Timestamp.IsZero() {
			problems = append(problems, fmt.Errorf("commits[%d].timestamp is required", index))
		}
	}
	return errors.Join(problems...)
}
