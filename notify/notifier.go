// Copyright 2026 The Pushwire Authors
// SPDX-License-Identifier: Apache-2.0

package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/pushwire/pushwire/lib/ref"
	"github.com/pushwire/pushwire/lib/secret"
	"github.com/pushwire/pushwire/messaging"
)

// DefaultTimeout bounds one complete delivery attempt (login, send,
// logout). A homeserver that cannot complete the sequence within this
// window costs the notification, not the webhook listener.
const DefaultTimeout = 10 * time.Second

// logoutTimeout bounds the cleanup logout after the delivery context
// has already expired or been cancelled.
const logoutTimeout = 5 * time.Second

// NotifierConfig holds the settings for creating a Notifier.
type NotifierConfig struct {
	// Homeserver is the base URL of the Matrix homeserver.
	Homeserver string
	// User is the account the relay logs in as for each delivery.
	User ref.UserID
	// Password authenticates User. The Notifier reads the buffer but
	// does not close it — the caller retains ownership.
	Password *secret.Buffer
	// DeviceID is sent with each login so the homeserver reuses one
	// device record instead of minting a new device per delivery. May
	// be empty.
	DeviceID string
	// RoomID is the room every notification is posted to.
	RoomID ref.RoomID
	// Timeout bounds one delivery attempt. Zero means DefaultTimeout.
	Timeout time.Duration
	// HTTPClient is used for homeserver requests. If nil,
	// http.DefaultClient is used.
	HTTPClient *http.Client
	// Logger is used for structured logging. If nil, slog.Default()
	// is used.
	Logger *slog.Logger
}

// Notifier delivers formatted messages to a single Matrix room. Each
// delivery uses a fresh session: login with the configured password,
// one idempotent send, logout. No session state survives between
// deliveries, so a crashed or timed-out delivery leaks nothing.
type Notifier struct {
	homeserver string
	user       ref.UserID
	password   *secret.Buffer
	deviceID   string
	roomID     ref.RoomID
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

// NewNotifier creates a Notifier. Panics if Homeserver, User, Password,
// or RoomID is missing: a Notifier without credentials or a target room
// is a programming error, not a runtime condition.
func NewNotifier(config NotifierConfig) *Notifier {
	if config.Homeserver == "" {
		panic("notify: NotifierConfig.Homeserver is required")
	}
	if config.User.IsZero() {
		panic("notify: NotifierConfig.User is required")
	}
	if config.Password == nil {
		panic("notify: NotifierConfig.Password is required")
	}
	if config.RoomID.IsZero() {
		panic("notify: NotifierConfig.RoomID is required")
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Notifier{
		homeserver: config.Homeserver,
		user:       config.User,
		password:   config.Password,
		deviceID:   config.DeviceID,
		roomID:     config.RoomID,
		timeout:    timeout,
		httpClient: config.HTTPClient,
		logger:     logger,
	}
}

// Deliver posts msg to the configured room as an m.notice. It opens a
// fresh session, sends once, and tears the session down on every exit
// path, including timeout. Failures return a *DeliveryError classified
// by stage; the message is not retried.
func (n *Notifier) Deliver(ctx context.Context, msg *Message) error {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	client, err := messaging.NewClient(messaging.ClientConfig{
		HomeserverURL: n.homeserver,
		HTTPClient:    n.httpClient,
		Logger:        n.logger,
	})
	if err != nil {
		return &DeliveryError{Stage: StageConnect, Err: err}
	}

	session, err := client.Login(ctx, n.user, n.password, n.deviceID)
	if err != nil {
		return &DeliveryError{Stage: loginStage(err), Err: err}
	}
	defer n.teardown(ctx, session)

	eventID, err := session.SendMessage(ctx, n.roomID, messaging.NewNotice(msg.Plain, msg.HTML))
	if err != nil {
		return &DeliveryError{Stage: StageSend, Err: err}
	}

	n.logger.Info("notification delivered",
		"room_id", n.roomID,
		"event_id", eventID,
	)
	return nil
}

// Check verifies the relay can actually deliver: it logs in, confirms
// the session identity with whoami, and logs out without sending
// anything. Backs the liveness probe. Failures are classified the same
// way Deliver classifies them.
func (n *Notifier) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	client, err := messaging.NewClient(messaging.ClientConfig{
		HomeserverURL: n.homeserver,
		HTTPClient:    n.httpClient,
		Logger:        n.logger,
	})
	if err != nil {
		return &DeliveryError{Stage: StageConnect, Err: err}
	}

	session, err := client.Login(ctx, n.user, n.password, n.deviceID)
	if err != nil {
		return &DeliveryError{Stage: loginStage(err), Err: err}
	}
	defer n.teardown(ctx, session)

	identity, err := session.WhoAmI(ctx)
	if err != nil {
		return &DeliveryError{Stage: StageLogin, Err: err}
	}
	if identity != n.user {
		return &DeliveryError{
			Stage: StageLogin,
			Err:   fmt.Errorf("homeserver reports identity %q, configured user is %q", identity, n.user),
		}
	}
	return nil
}

// loginStage classifies a login failure. A response carrying a Matrix
// error body means the homeserver was reached and rejected the
// credentials; anything else (DNS, TCP refusal, deadline) is a
// transport failure and belongs to the connect stage.
func loginStage(err error) string {
	var matrixErr *messaging.MatrixError
	if errors.As(err, &matrixErr) {
		return StageLogin
	}
	return StageConnect
}

// teardown logs out and releases the session. The logout runs on a
// context detached from the delivery deadline, so a send that timed
// out does not also doom the token invalidation.
func (n *Notifier) teardown(ctx context.Context, session *messaging.Session) {
	logoutCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), logoutTimeout)
	defer cancel()

	if err := session.Logout(logoutCtx); err != nil {
		n.logger.Warn("matrix logout failed, access token may remain valid",
			"user_id", session.UserID(),
			"error", err,
		)
	}
	if err := session.Close(); err != nil {
		n.logger.Warn("failed to release session token buffer", "error", err)
	}
}
