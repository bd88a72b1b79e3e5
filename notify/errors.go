// Copyright 2026 The Pushwire Authors
// SPDX-License-Identifier: Apache-2.0

package notify

import (
	"context"
	"errors"
	"fmt"
)

// Delivery stages, recorded in [DeliveryError.Stage].
const (
	// StageConnect covers reaching the homeserver at all: client
	// construction and transport-level failures (DNS, refused
	// connections, deadlines before a response).
	StageConnect = "connect"
	// StageLogin covers password authentication rejected by the
	// homeserver.
	StageLogin = "login"
	// StageSend covers posting the message event to the room.
	StageSend = "send"
)

// DeliveryError reports a failed delivery attempt, classified by the
// stage of the login/send/logout sequence that failed. Delivery is
// at-most-once, so a DeliveryError means the notification was dropped.
type DeliveryError struct {
	Stage string
	Err   error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("notify: delivery failed during %s: %v", e.Stage, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the failure was caused by the delivery
// deadline expiring rather than the homeserver rejecting the request.
func (e *DeliveryError) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

// IsDeliveryError checks if an error is a *DeliveryError.
func IsDeliveryError(err error) bool {
	var deliveryErr *DeliveryError
	return errors.As(err, &deliveryErr)
}
