// Copyright 2026 The Pushwire Authors
// SPDX-License-Identifier: Apache-2.0

package notify

import (
	"fmt"
	"html"
	"strings"

	"github.com/pushwire/pushwire/gitlab"
)

// Message is a rendered notification with a plain-text body and its
// HTML equivalent. Both are built from the same computed values.
type Message struct {
	// Plain is the fallback body shown by clients that do not render
	// HTML.
	Plain string

	// HTML is the rich rendering of the same content. Every value
	// interpolated into it is escaped.
	HTML string
}

// FormatPush renders a push event into a notification message. The
// reported commit is the newest one in the push (latest timestamp,
// later list position on a tie). The full commit message is shown with
// surrounding whitespace trimmed.
//
// A push whose commit list is empty (branch creation, branch deletion,
// tag-only pushes) produces no notification: FormatPush returns
// (nil, false) and the caller acknowledges the event without
// delivering anything.
func FormatPush(event *gitlab.PushEvent) (*Message, bool) {
	commit := event.LatestCommit()
	if commit == nil {
		return nil, false
	}

	repository := event.Project.PathWithNamespace
	actor := event.UserUsername
	branch := event.Branch()
	message := strings.TrimSpace(commit.Message)
	commitURL := event.CommitURL(commit)

	plain := fmt.Sprintf("[%s] %s pushed to %s: %s - %s",
		repository, actor, branch, message, commitURL)

	rich := fmt.Sprintf("[<u>%s</u>] %s pushed to <b>%s</b>: %s - %s",
		html.EscapeString(repository),
		html.EscapeString(actor),
		html.EscapeString(branch),
		html.EscapeString(message),
		html.EscapeString(commitURL))

	return &Message{Plain: plain, HTML: rich}, true
}
