// Copyright 2026 The Pushwire Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/pushwire/pushwire/lib/ref"
	"github.com/pushwire/pushwire/lib/secret"
)

// Session is an authenticated Matrix session. It wraps a Client with an
// access token for making authenticated API calls.
//
// The access token is stored in a secret.Buffer (mmap-backed, locked
// against swap, excluded from core dumps). The caller must call Close
// when the Session is no longer needed; for short-lived delivery
// sessions, call Logout first so the homeserver invalidates the token
// rather than accumulating live device records.
type Session struct {
	client      *Client
	accessToken *secret.Buffer
	userID      ref.UserID
	deviceID    string

	// transactionCounter generates unique transaction IDs for idempotent sends.
	transactionCounter atomic.Int64
}

// UserID returns the fully-qualified Matrix user ID of the session.
func (s *Session) UserID() ref.UserID {
	return s.userID
}

// DeviceID returns the device ID for this session.
func (s *Session) DeviceID() string {
	return s.deviceID
}

// WhoAmI validates the access token and returns the user ID.
func (s *Session) WhoAmI(ctx context.Context) (ref.UserID, error) {
	body, err := s.client.doRequest(ctx, http.MethodGet, "/_matrix/client/v3/account/whoami", s.accessToken, nil)
	if err != nil {
		return ref.UserID{}, fmt.Errorf("messaging: whoami failed: %w", err)
	}

	var response WhoAmIResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return ref.UserID{}, fmt.Errorf("messaging: failed to parse whoami response: %w", err)
	}
	return response.UserID, nil
}

// SendMessage sends an m.room.message event to a room. Uses Matrix's
// idempotent PUT with a transaction ID. Returns the event ID of the
// sent message.
func (s *Session) SendMessage(ctx context.Context, roomID ref.RoomID, content MessageContent) (string, error) {
	transactionID := s.nextTransactionID()
	path := fmt.Sprintf("/_matrix/client/v3/rooms/%s/send/m.room.message/%s",
		url.PathEscape(roomID.String()),
		url.PathEscape(transactionID),
	)

	body, err := s.client.doRequest(ctx, http.MethodPut, path, s.accessToken, content)
	if err != nil {
		return "", fmt.Errorf("messaging: send message to %q failed: %w", roomID, err)
	}

	var response SendEventResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("messaging: failed to parse send response: %w", err)
	}
	return response.EventID, nil
}

// Logout invalidates this session's access token on the homeserver.
// The token buffer stays allocated until Close — a failed logout must
// not leave the session unusable for a retry.
func (s *Session) Logout(ctx context.Context) error {
	_, err := s.client.doRequest(ctx, http.MethodPost, "/_matrix/client/v3/logout", s.accessToken, struct{}{})
	if err != nil {
		return fmt.Errorf("messaging: logout failed: %w", err)
	}
	return nil
}

// Close releases the access token memory (zeros, unlocks, unmaps).
// Idempotent — safe to call multiple times.
func (s *Session) Close() error {
	if s.accessToken != nil {
		return s.accessToken.Close()
	}
	return nil
}

// nextTransactionID generates a unique transaction ID for idempotent
// event sending. Format: "pushwire-<timestamp_ms>-<counter>" to ensure
// uniqueness across restarts.
func (s *Session) nextTransactionID() string {
	counter := s.transactionCounter.Add(1)
	return fmt.Sprintf("pushwire-%d-%d", time.Now().UnixMilli(), counter)
}
