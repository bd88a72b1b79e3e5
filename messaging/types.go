// Copyright 2026 The Pushwire Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import "github.com/pushwire/pushwire/lib/ref"

// customHTMLFormat is the Matrix format identifier for messages that
// carry an HTML rendering alongside the plain-text body.
const customHTMLFormat = "org.matrix.custom.html"

// LoginRequest is the request body for password login.
type LoginRequest struct {
	Type                     string `json:"type"`
	User                     string `json:"user"`
	Password                 string `json:"password"`
	DeviceID                 string `json:"device_id,omitempty"`
	InitialDeviceDisplayName string `json:"initial_device_display_name,omitempty"`
}

// AuthResponse is returned by Login.
type AuthResponse struct {
	UserID      ref.UserID `json:"user_id"`
	AccessToken string     `json:"access_token"`
	DeviceID    string     `json:"device_id"`
}

// MessageContent is the content body of a Matrix message event
// (m.room.message). Format and FormattedBody are set together or not
// at all: a formatted body is meaningless without its format tag.
type MessageContent struct {
	MsgType       string `json:"msgtype"`
	Body          string `json:"body"`
	Format        string `json:"format,omitempty"`
	FormattedBody string `json:"formatted_body,omitempty"`
}

// NewNotice creates an m.notice message carrying both a plain-text body
// and its HTML rendering. Notices are the conventional msgtype for
// automated senders — clients render them without triggering the
// notification sounds a human message would.
func NewNotice(plain, html string) MessageContent {
	return MessageContent{
		MsgType:       "m.notice",
		Body:          plain,
		Format:        customHTMLFormat,
		FormattedBody: html,
	}
}

// NewText creates a plain m.text message.
func NewText(body string) MessageContent {
	return MessageContent{
		MsgType: "m.text",
		Body:    body,
	}
}

// SendEventResponse is returned by Session.SendMessage.
type SendEventResponse struct {
	EventID string `json:"event_id"`
}

// WhoAmIResponse is returned by Session.WhoAmI.
type WhoAmIResponse struct {
	UserID   ref.UserID `json:"user_id"`
	DeviceID string     `json:"device_id,omitempty"`
}

// ServerVersionsResponse is returned by Client.ServerVersions.
type ServerVersionsResponse struct {
	Versions         []string        `json:"versions"`
	UnstableFeatures map[string]bool `json:"unstable_features,omitempty"`
}
