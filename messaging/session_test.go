// Copyright 2026 The Pushwire Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pushwire/pushwire/lib/ref"
)

// fakeHomeserver serves login, send, and logout for session tests and
// records what it saw.
type fakeHomeserver struct {
	t *testing.T

	sendCount   int
	logoutCount int
	lastContent MessageContent
	lastTxnIDs  []string
	lastAuth    string
}

func (f *fakeHomeserver) handler() http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "application/json")
		f.lastAuth = request.Header.Get("Authorization")

		switch {
		case request.URL.Path == "/_matrix/client/v3/login":
			json.NewEncoder(writer).Encode(map[string]string{
				"user_id":      "@relay:test.local",
				"access_token": "syt_relay_token",
				"device_id":    "GENERATED",
			})

		case strings.HasPrefix(request.URL.Path, "/_matrix/client/v3/rooms/") &&
			strings.Contains(request.URL.Path, "/send/m.room.message/"):
			if request.Method != http.MethodPut {
				f.t.Errorf("send method = %s, want PUT", request.Method)
			}
			f.sendCount++
			segments := strings.Split(request.URL.Path, "/")
			f.lastTxnIDs = append(f.lastTxnIDs, segments[len(segments)-1])
			if err := json.NewDecoder(request.Body).Decode(&f.lastContent); err != nil {
				f.t.Fatalf("decoding message content: %v", err)
			}
			json.NewEncoder(writer).Encode(map[string]string{"event_id": "$event1"})

		case request.URL.Path == "/_matrix/client/v3/logout":
			f.logoutCount++
			writer.Write([]byte("{}"))

		default:
			f.t.Errorf("unexpected request: %s %s", request.Method, request.URL.Path)
			writer.WriteHeader(http.StatusNotFound)
		}
	})
}

func newTestSession(t *testing.T) (*Session, *fakeHomeserver) {
	t.Helper()
	fake := &fakeHomeserver{t: t}
	server := httptest.NewServer(fake.handler())
	t.Cleanup(server.Close)

	client, err := NewClient(ClientConfig{HomeserverURL: server.URL, Logger: testLogger()})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	session, err := client.Login(context.Background(),
		testUserID(t, "@relay:test.local"), testBuffer(t, "password"), "")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return session, fake
}

func testRoomID(t *testing.T, raw string) ref.RoomID {
	t.Helper()
	parsed, err := ref.ParseRoomID(raw)
	if err != nil {
		t.Fatalf("ParseRoomID(%q): %v", raw, err)
	}
	return parsed
}

func TestSendMessage(t *testing.T) {
	session, fake := newTestSession(t)

	content := NewNotice("plain body", "<b>html body</b>")
	eventID, err := session.SendMessage(context.Background(), testRoomID(t, "!room:test.local"), content)
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	if eventID != "$event1" {
		t.Errorf("event ID = %q, want %q", eventID, "$event1")
	}
	if fake.sendCount != 1 {
		t.Errorf("send count = %d, want 1", fake.sendCount)
	}
	if fake.lastAuth != "Bearer syt_relay_token" {
		t.Errorf("authorization = %q, want bearer token", fake.lastAuth)
	}
	if fake.lastContent.MsgType != "m.notice" {
		t.Errorf("msgtype = %q, want %q", fake.lastContent.MsgType, "m.notice")
	}
	if fake.lastContent.Format != "org.matrix.custom.html" {
		t.Errorf("format = %q, want %q", fake.lastContent.Format, "org.matrix.custom.html")
	}
	if fake.lastContent.Body != "plain body" {
		t.Errorf("body = %q, want %q", fake.lastContent.Body, "plain body")
	}
	if fake.lastContent.FormattedBody != "<b>html body</b>" {
		t.Errorf("formatted_body = %q, want %q", fake.lastContent.FormattedBody, "<b>html body</b>")
	}
}

func TestSendMessageTransactionIDsAreUnique(t *testing.T) {
	session, fake := newTestSession(t)
	room := testRoomID(t, "!room:test.local")

	for i := 0; i < 3; i++ {
		if _, err := session.SendMessage(context.Background(), room, NewText("hello")); err != nil {
			t.Fatalf("SendMessage: %v", err)
		}
	}

	seen := make(map[string]bool)
	for _, txnID := range fake.lastTxnIDs {
		if seen[txnID] {
			t.Errorf("transaction ID %q reused", txnID)
		}
		seen[txnID] = true
	}
}

func TestLogout(t *testing.T) {
	session, fake := newTestSession(t)

	if err := session.Logout(context.Background()); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if fake.logoutCount != 1 {
		t.Errorf("logout count = %d, want 1", fake.logoutCount)
	}
}

func TestSessionCloseIsIdempotent(t *testing.T) {
	session, _ := newTestSession(t)

	if err := session.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := session.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestNewNotice(t *testing.T) {
	content := NewNotice("plain", "<u>rich</u>")
	if content.MsgType != "m.notice" {
		t.Errorf("msgtype = %q, want m.notice", content.MsgType)
	}
	if content.Format != "org.matrix.custom.html" {
		t.Errorf("format = %q, want org.matrix.custom.html", content.Format)
	}

	// A plain text message must not carry an empty format tag.
	encoded, err := json.Marshal(NewText("plain"))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if strings.Contains(string(encoded), "format") {
		t.Errorf("plain message JSON contains format field: %s", encoded)
	}
}
