// Copyright 2026 The Pushwire Authors
// SPDX-License-Identifier: Apache-2.0

package gitlab

import (
	"strings"
	"time"
)

// PushEvent is the payload of a GitLab "Push Hook" delivery. Field set
// follows the GitLab push-event webhook documentation; the relay only
// validates the fields it consumes (see validate), the rest are carried
// for logging and future formatters.
type PushEvent struct {
	ObjectKind        string     `json:"object_kind"`
	EventName         string     `json:"event_name"`
	Before            string     `json:"before"`
	After             string     `json:"after"`
	Ref               string     `json:"ref"`
	CheckoutSHA       string     `json:"checkout_sha"`
	UserID            int64      `json:"user_id"`
	UserName          string     `json:"user_name"`
	UserUsername      string     `json:"user_username"`
	UserEmail         string     `json:"user_email"`
	UserAvatar        string     `json:"user_avatar"`
	ProjectID         int64      `json:"project_id"`
	Project           Project    `json:"project"`
	Repository        Repository `json:"repository"`
	Commits           []Commit   `json:"commits"`
	TotalCommitsCount int64      `json:"total_commits_count"`
}

// Project identifies the repository the push targeted.
type Project struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	Description       string `json:"description"`
	WebURL            string `json:"web_url"`
	AvatarURL         string `json:"avatar_url"`
	GitSSHURL         string `json:"git_ssh_url"`
	GitHTTPURL        string `json:"git_http_url"`
	Namespace         string `json:"namespace"`
	VisibilityLevel   int64  `json:"visibility_level"`
	PathWithNamespace string `json:"path_with_namespace"`
	DefaultBranch     string `json:"default_branch"`
	Homepage          string `json:"homepage"`
	URL               string `json:"url"`
	SSHURL            string `json:"ssh_url"`
	HTTPURL           string `json:"http_url"`
}

// Repository is the legacy repository block GitLab still sends
// alongside Project.
type Repository struct {
	Name            string `json:"name"`
	URL             string `json:"url"`
	Description     string `json:"description"`
	Homepage        string `json:"homepage"`
	GitHTTPURL      string `json:"git_http_url"`
	GitSSHURL       string `json:"git_ssh_url"`
	VisibilityLevel int64  `json:"visibility_level"`
}

// Commit is a single commit entry in a push payload.
type Commit struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Title     string    `json:"title"`
	Timestamp time.Time `json:"timestamp"`
	Author    Author    `json:"author"`
	Added     []string  `json:"added"`
	Modified  []string  `json:"modified"`
	Removed   []string  `json:"removed"`
}

// Author is the name/email pair attached to a commit.
type Author struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Branch returns the branch name for the push. The "refs/heads/" prefix
// is stripped when present, keeping multi-segment branch names intact
// ("refs/heads/release/v2" yields "release/v2"). For other refs (tags,
// notes) the final path segment is returned.
func (e *PushEvent) Branch() string {
	if branch, found := strings.CutPrefix(e.Ref, "refs/heads/"); found {
		return branch
	}
	segments := strings.Split(e.Ref, "/")
	return segments[len(segments)-1]
}

// LatestCommit returns the most recent commit in the push, determined
// by maximum timestamp. When two commits share a timestamp the later
// list position wins, so the choice is deterministic. Returns nil for
// an empty commit list.
func (e *PushEvent) LatestCommit() *Commit {
	if len(e.Commits) == 0 {
		return nil
	}
	latest := 0
	for index := 1; index < len(e.Commits); index++ {
		if !e.Commits[index].Timestamp.Before(e.Commits[latest].Timestamp) {
			latest = index
		}
	}
	return &e.Commits[latest]
}

// CommitURL returns the project web URL for a commit in this push.
func (e *PushEvent) CommitURL(commit *Commit) string {
	return e.Project.Homepage + "/-/commit/" + commit.ID
}
