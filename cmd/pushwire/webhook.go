// Copyright 2026 The Pushwire Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/pushwire/pushwire/gitlab"
	"github.com/pushwire/pushwire/lib/secret"
	"github.com/pushwire/pushwire/notify"
)

// maxWebhookBodySize caps the payload size we will read. GitLab push
// payloads are small (commit lists are truncated to 20 entries by the
// forge), so 1 MB gives comfortable headroom.
const maxWebhookBodySize = 1 * 1024 * 1024

// deduplicationWindow is how long we track event UUIDs for replay
// protection. GitLab retries within minutes, so 1 hour is conservative.
const deduplicationWindow = 1 * time.Hour

// tokenRejectionMessage is the error body for a failed token check. It
// names the header, never the expected value.
const tokenRejectionMessage = "X-Gitlab-Token is not valid"

// Deliverer sends a formatted notification to the chat room.
// *notify.Notifier implements it; tests substitute a recorder.
type Deliverer interface {
	Deliver(ctx context.Context, msg *notify.Message) error
}

// Checker verifies that the relay can reach and authenticate against
// the homeserver. *notify.Notifier implements it.
type Checker interface {
	Check(ctx context.Context) error
}

// WebhookHandler processes incoming GitLab webhooks. It verifies the
// shared secret token, deduplicates deliveries, decodes payloads, and
// hands push notifications to the Deliverer.
//
// Response contract: a sender with the right token always gets HTTP
// 200 with {"ok":...} once the payload has been consumed, whatever the
// payload contains — retrying cannot fix an unknown event type or a
// malformed body, and delivery is at-most-once so a failed delivery is
// reported but never retried either. Only a bad token (401) or a
// non-POST method (405) is an HTTP-level rejection.
type WebhookHandler struct {
	token     *secret.Buffer
	deliverer Deliverer
	logger    *slog.Logger

	// deliveries tracks recently processed X-Gitlab-Event-UUID values
	// for replay protection, keyed by UUID with first-seen time.
	mu         sync.Mutex
	deliveries map[string]time.Time
}

// NewWebhookHandler creates a handler that authenticates webhooks
// against the given shared secret token. Panics if token, deliverer,
// or logger is nil — a handler without a token would accept forged
// deliveries, and a nil deliverer would silently discard them.
func NewWebhookHandler(token *secret.Buffer, deliverer Deliverer, logger *slog.Logger) *WebhookHandler {
	if token == nil {
		panic("WebhookHandler: token is required")
	}
	if deliverer == nil {
		panic("WebhookHandler: deliverer is required")
	}
	if logger == nil {
		panic("WebhookHandler: logger is required")
	}
	return &WebhookHandler{
		token:      token,
		deliverer:  deliverer,
		logger:     logger,
		deliveries: make(map[string]time.Time),
	}
}

// webhookResponse is the JSON body returned for every consumed webhook.
type webhookResponse struct {
	OK    bool    `json:"ok"`
	Error *string `json:"error"`
}

// ServeHTTP handles a single webhook delivery.
func (h *WebhookHandler) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodPost {
		http.Error(writer, "", http.StatusMethodNotAllowed)
		return
	}

	// Token check comes before any payload parsing: an unauthenticated
	// sender learns nothing about what the relay accepts.
	if !h.token.EqualString(request.Header.Get("X-Gitlab-Token")) {
		h.logger.Warn("webhook: token verification failed",
			"remote_addr", request.RemoteAddr,
		)
		h.respond(writer, http.StatusUnauthorized, &webhookResponse{
			OK:    false,
			Error: stringPointer(tokenRejectionMessage),
		})
		return
	}

	body, err := io.ReadAll(io.LimitReader(request.Body, maxWebhookBodySize))
	if err != nil {
		h.logger.Error("webhook: failed to read body", "error", err)
		http.Error(writer, "", http.StatusInternalServerError)
		return
	}

	eventHeader := request.Header.Get("X-Gitlab-Event")
	eventUUID := request.Header.Get("X-Gitlab-Event-UUID")

	// Replay protection: acknowledge duplicate deliveries without
	// re-notifying the room.
	if eventUUID != "" && h.isDuplicate(eventUUID) {
		h.logger.Debug("webhook: duplicate delivery, ignoring",
			"event_uuid", eventUUID,
			"event_header", eventHeader,
		)
		h.respond(writer, http.StatusOK, &webhookResponse{OK: true})
		return
	}

	kind := gitlab.ResolveKind(eventHeader)
	event, err := gitlab.Decode(kind, body)
	if err != nil {
		// Either an event type the relay does not handle or a payload
		// that failed schema validation. Both are acknowledged: the
		// sender did its job, retrying changes nothing.
		h.logger.Warn("webhook: payload not processed",
			"event_header", eventHeader,
			"event_uuid", eventUUID,
			"error", err,
		)
		h.respond(writer, http.StatusOK, &webhookResponse{OK: true})
		return
	}

	pushEvent, isPush := event.(*gitlab.PushEvent)
	if !isPush {
		// Registered but unrouted event kind. Nothing to notify.
		h.respond(writer, http.StatusOK, &webhookResponse{OK: true})
		return
	}

	msg, ok := notify.FormatPush(pushEvent)
	if !ok {
		h.logger.Debug("webhook: push with no commits, nothing to notify",
			"ref", pushEvent.Ref,
			"project", pushEvent.Project.PathWithNamespace,
		)
		h.respond(writer, http.StatusOK, &webhookResponse{OK: true})
		return
	}

	h.logger.Info("webhook received",
		"event_uuid", eventUUID,
		"project", pushEvent.Project.PathWithNamespace,
		"branch", pushEvent.Branch(),
	)

	// Delivery runs on a context detached from the request: GitLab
	// hanging up must not abort a send already in flight.
	if err := h.deliverer.Deliver(context.WithoutCancel(request.Context()), msg); err != nil {
		h.logger.Error("webhook: notification delivery failed",
			"event_uuid", eventUUID,
			"error", err,
		)
		// Still 200: the webhook was consumed, the notification was
		// not. GitLab must not retry an at-most-once delivery.
		h.respond(writer, http.StatusOK, &webhookResponse{
			OK:    false,
			Error: stringPointer(err.Error()),
		})
		return
	}

	h.respond(writer, http.StatusOK, &webhookResponse{OK: true})
}

// respond writes the JSON acknowledgement body.
func (h *WebhookHandler) respond(writer http.ResponseWriter, status int, response *webhookResponse) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	if err := json.NewEncoder(writer).Encode(response); err != nil {
		h.logger.Error("webhook: failed to write response", "error", err)
	}
}

// isDuplicate checks and records an event UUID. Returns true if the
// delivery was already processed within the deduplication window.
// Expired entries are pruned on every check; the map holds one entry
// per webhook over the last hour, so the scan is cheap.
func (h *WebhookHandler) isDuplicate(eventUUID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := time.Now()
	for id, receivedAt := range h.deliveries {
		if now.Sub(receivedAt) > deduplicationWindow {
			delete(h.deliveries, id)
		}
	}

	if _, exists := h.deliveries[eventUUID]; exists {
		return true
	}
	h.deliveries[eventUUID] = now
	return false
}

// healthHandler answers liveness probes. A probe succeeds only when
// the relay can log in to the homeserver and confirm its identity, so
// /up reports real delivery capability, not just a bound listener.
type healthHandler struct {
	checker Checker
	logger  *slog.Logger
}

func (h *healthHandler) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	writer.Header().Set("Content-Type", "application/json")

	if err := h.checker.Check(request.Context()); err != nil {
		h.logger.Warn("health: homeserver check failed", "error", err)
		writer.WriteHeader(http.StatusServiceUnavailable)
		if err := json.NewEncoder(writer).Encode(&webhookResponse{
			OK:    false,
			Error: stringPointer(err.Error()),
		}); err != nil {
			h.logger.Error("health: failed to write response", "error", err)
		}
		return
	}

	writer.WriteHeader(http.StatusOK)
	if _, err := writer.Write([]byte("{}\n")); err != nil {
		h.logger.Error("health: failed to write response", "error", err)
	}
}

// newMux routes webhook deliveries to handler and liveness probes to
// /up. Everything else falls through to the webhook handler, which
// rejects non-POST methods.
func newMux(handler *WebhookHandler, checker Checker, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/up", &healthHandler{checker: checker, logger: logger})
	mux.Handle("/", handler)
	return mux
}

func stringPointer(value string) *string {
	return &value
}
