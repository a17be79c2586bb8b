package notification

import (
	"context"
	"fmt"

	"savipets/models"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// FCMDispatcher routes visit events as data-only FCM messages. The receiving
// app renders its own copy from the event kind, which keeps content out of the
// engine.
type FCMDispatcher struct {
	Client *messaging.Client
	Tokens TokenSource
	Logger *zap.Logger
}

func NewFCMDispatcher(client *messaging.Client, tokens TokenSource, logger *zap.Logger) (*FCMDispatcher, error) {
	if client == nil || tokens == nil {
		return nil, fmt.Errorf("fcm dispatcher initialization error: client or token source is nil")
	}
	return &FCMDispatcher{Client: client, Tokens: tokens, Logger: logger}, nil
}

func (d *FCMDispatcher) Dispatch(ctx context.Context, event models.VisitEvent) error {
	token, err := d.Tokens.FCMToken(ctx, event.Recipient)
	if err != nil {
		return fmt.Errorf("Dispatch: could not resolve token for %s: %w", event.Recipient, err)
	}
	if token == "" {
		// No push target registered; nothing to deliver.
		return nil
	}

	msg := &messaging.Message{
		Token: token,
		Data: map[string]string{
			"eventId":    event.EventID,
			"kind":       string(event.Kind),
			"visitId":    event.VisitID,
			"bookingId":  event.BookingID,
			"actorId":    event.ActorID,
			"occurredAt": event.OccurredAt.Format("2006-01-02T15:04:05Z07:00"),
		},
	}

	if _, err := d.Client.Send(ctx, msg); err != nil {
		return fmt.Errorf("Dispatch: failed to send FCM message: %w", err)
	}

	d.Logger.Debug("visit event dispatched",
		zap.String("kind", string(event.Kind)),
		zap.String("visitId", event.VisitID),
		zap.String("recipient", event.Recipient))
	return nil
}
