package notification

import (
	"context"

	"savipets/models"
)

// Dispatcher consumes visit lifecycle events emitted by the command executor.
// The engine supplies routing data only; message content is owned by the
// notification subsystem.
type Dispatcher interface {
	Dispatch(ctx context.Context, event models.VisitEvent) error
}

// TokenSource resolves a recipient id to their push token.
type TokenSource interface {
	FCMToken(ctx context.Context, userID string) (string, error)
}
