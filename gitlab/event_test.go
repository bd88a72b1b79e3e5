// Copyright 2026 The Pushwire Authors
// SPDX-License-Identifier: Apache-2.0

package gitlab

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestResolveKind(t *testing.T) {
	tests := []struct {
		header string
		want   Kind
	}{
		{"Push Hook", "PushEvent"},
		{"Merge Request Hook", "MergeRequestEvent"},
		{"Tag Push Hook", "TagPushEvent"},
		{"Note Hook", "NoteEvent"},
		{"PushEvent", "PushEvent"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			if got := ResolveKind(tt.header); got != tt.want {
				t.Errorf("ResolveKind(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}

const validPushPayload = `{
	"object_kind": "push",
	"event_name": "push",
	"before": "95790bf891e76fee5e1747ab589903a6a1f80f22",
	"after": "da1560886d4f094c3e6c9ef40349f7d38b5d27d7",
	"ref": "refs/heads/main",
	"checkout_sha": "da1560886d4f094c3e6c9ef40349f7d38b5d27d7",
	"user_id": 4,
	"user_name": "John Smith",
	"user_username": "jsmith",
	"user_email": "john@example.com",
	"user_avatar": "https://gitlab.example.com/uploads/user/avatar/1/avatar.png",
	"project_id": 15,
	"project": {
		"id": 15,
		"name": "Diaspora",
		"web_url": "https://gitlab.example.com/mike/diaspora",
		"path_with_namespace": "mike/diaspora",
		"default_branch": "main",
		"homepage": "https://gitlab.example.com/mike/diaspora"
	},
	"repository": {
		"name": "Diaspora",
		"url": "git@gitlab.example.com:mike/diaspora.git",
		"homepage": "https://gitlab.example.com/mike/diaspora"
	},
	"commits": [
		{
			"id": "b6568db1bc1dcd7f8b4d5a946b0b91f9dacd7327",
			"message": "Update Catalan translation to e38cb41.\n",
			"title": "Update Catalan translation to e38cb41.",
			"timestamp": "2011-12-12T14:27:31+02:00",
			"author": {"name": "Jordi Mallach", "email": "jordi@softcatala.org"},
			"added": ["CHANGELOG"],
			"modified": ["app/controller/application.rb"],
			"removed": []
		},
		{
			"id": "da1560886d4f094c3e6c9ef40349f7d38b5d27d7",
			"message": "fixed readme",
			"title": "fixed readme",
			"timestamp": "2011-12-12T14:32:31+02:00",
			"author": {"name": "GitLab dev user", "email": "gitlabdev@dv6700.(none)"},
			"added": ["CHANGELOG"],
			"modified": ["app/controller/application.rb"],
			"removed": []
		}
	],
	"total_commits_count": 2
}`

func TestDecodePush(t *testing.T) {
	event, err := Decode(KindPush, []byte(validPushPayload))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	push, ok := event.(*PushEvent)
	if !ok {
		t.Fatalf("event type = %T, want *PushEvent", event)
	}
	if push.EventKind() != KindPush {
		t.Errorf("kind = %q, want %q", push.EventKind(), KindPush)
	}
	if push.UserUsername != "jsmith" {
		t.Errorf("user_username = %q, want %q", push.UserUsername, "jsmith")
	}
	if push.Project.PathWithNamespace != "mike/diaspora" {
		t.Errorf("path_with_namespace = %q, want %q", push.Project.PathWithNamespace, "mike/diaspora")
	}
	if len(push.Commits) != 2 {
		t.Fatalf("commit count = %d, want 2", len(push.Commits))
	}
	if push.TotalCommitsCount != 2 {
		t.Errorf("total_commits_count = %d, want 2", push.TotalCommitsCount)
	}
}

func TestDecodeUnknownKind(t *testing.T) {
	_, err := Decode(ResolveKind("Merge Request Hook"), []byte(`{"object_kind":"merge_request"}`))
	if !errors.Is(err, ErrUnknownEventType) {
		t.Errorf("error = %v, want ErrUnknownEventType", err)
	}
}

func TestDecodeMalformedPayloads(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		detail  string
	}{
		{
			name:    "invalid_json",
			payload: `{"ref": `,
			detail:  "",
		},
		{
			name:    "missing_ref",
			payload: `{"user_username":"jsmith","project":{"path_with_namespace":"a/b","homepage":"https://x"},"commits":[]}`,
			detail:  "ref is required",
		},
		{
			name:    "missing_username",
			payload: `{"ref":"refs/heads/main","project":{"path_with_namespace":"a/b","homepage":"https://x"},"commits":[]}`,
			detail:  "user_username is required",
		},
		{
			name:    "missing_project_homepage",
			payload: `{"ref":"refs/heads/main","user_username":"jsmith","project":{"path_with_namespace":"a/b"},"commits":[]}`,
			detail:  "project.homepage is required",
		},
		{
			name:    "bad_timestamp",
			payload: `{"ref":"refs/heads/main","user_username":"jsmith","project":{"path_with_namespace":"a/b","homepage":"https://x"},"commits":[{"id":"abc","timestamp":"12-12-2011 14:27"}]}`,
			detail:  "",
		},
		{
			name:    "commit_missing_id",
			payload: `{"ref":"refs/heads/main","user_username":"jsmith","project":{"path_with_namespace":"a/b","homepage":"https://x"},"commits":[{"timestamp":"2011-12-12T14:27:31+02:00"}]}`,
			detail:  "commits[0].id is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(KindPush, []byte(tt.payload))
			var payloadErr *PayloadError
			if !errors.As(err, &payloadErr) {
				t.Fatalf("error = %v, want *PayloadError", err)
			}
			if payloadErr.Kind != KindPush {
				t.Errorf("error kind = %q, want %q", payloadErr.Kind, KindPush)
			}
			if tt.detail != "" && !strings.Contains(err.Error(), tt.detail) {
				t.Errorf("error %q does not mention %q", err, tt.detail)
			}
		})
	}
}

func TestDecodeEmptyCommitListIsValid(t *testing.T) {
	payload := `{"ref":"refs/heads/main","user_username":"jsmith","project":{"path_with_namespace":"a/b","homepage":"https://x"},"commits":[]}`
	event, err := Decode(KindPush, []byte(payload))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if push := event.(*PushEvent); push.LatestCommit() != nil {
		t.Error("LatestCommit on empty commit list should be nil")
	}
}

func TestBranch(t *testing.T) {
	tests := []struct {
		ref  string
		want string
	}{
		{"refs/heads/main", "main"},
		{"refs/heads/release/v2", "release/v2"},
		{"refs/tags/v1.0.0", "v1.0.0"},
		{"main", "main"},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			event := &PushEvent{Ref: tt.ref}
			if got := event.Branch(); got != tt.want {
				t.Errorf("Branch() with ref %q = %q, want %q", tt.ref, got, tt.want)
			}
		})
	}
}

func TestLatestCommit(t *testing.T) {
	early := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	late := time.Date(2026, 1, 15, 11, 0, 0, 0, time.UTC)

	t.Run("max_timestamp_wins", func(t *testing.T) {
		event := &PushEvent{Commits: []Commit{
			{ID: "newer", Timestamp: late},
			{ID: "older", Timestamp: early},
		}}
		if got := event.LatestCommit(); got.ID != "newer" {
			t.Errorf("LatestCommit().ID = %q, want %q", got.ID, "newer")
		}
	})

	t.Run("tie_picks_later_position", func(t *testing.T) {
		event := &PushEvent{Commits: []Commit{
			{ID: "first", Timestamp: late},
			{ID: "second", Timestamp: late},
		}}
		if got := event.LatestCommit(); got.ID != "second" {
			t.Errorf("LatestCommit().ID = %q, want %q", got.ID, "second")
		}
	})

	t.Run("single_commit", func(t *testing.T) {
		event := &PushEvent{Commits: []Commit{{ID: "only", Timestamp: early}}}
		if got := event.LatestCommit(); got.ID != "only" {
			t.Errorf("LatestCommit().ID = %q, want %q", got.ID, "only")
		}
	})
}

func TestCommitURL(t *testing.T) {
	event := &PushEvent{Project: Project{Homepage: "https://gitlab.example.com/mike/diaspora"}}
	commit := &Commit{ID: "abc123"}
	want := "https://gitlab.example.com/mike/diaspora/-/commit/abc123"
	if got := event.CommitURL(commit); got != want {
		t.Errorf("CommitURL() = %q, want %q", got, want)
	}
}
