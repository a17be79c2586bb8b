package visitstore

import (
	"context"
	"time"

	"savipets/models"
)

// Snapshot is one authoritative visit state pushed by the document store. Each
// snapshot total-replaces prior known fields. HasPendingWrites mirrors the
// store's unconfirmed-local-write metadata when the backing client reports it;
// the reconciler overlays its own command-in-flight tracking on top.
type Snapshot struct {
	Visit            models.Visit
	HasPendingWrites bool
	ReadAt           time.Time
}

// Subscription is a live snapshot stream for one visit document. Stop is
// idempotent and tears the stream down; after Stop the channels are closed.
type Subscription interface {
	Snapshots() <-chan Snapshot
	Errs() <-chan error
	Stop()
}

// VisitStore is the engine's view of the visit document store: a push-based
// snapshot feed plus field-level writes. Authoritative timestamps (check-in,
// check-out) are always generated server-side; the client never supplies its
// own wall-clock value for them.
type VisitStore interface {
	Get(ctx context.Context, visitID string) (*models.Visit, error)
	Subscribe(ctx context.Context, visitID string) (Subscription, error)

	CheckIn(ctx context.Context, visitID string) error
	CheckOut(ctx context.Context, visitID string) error
	UndoCheckIn(ctx context.Context, visitID string) error

	// UpdateSchedule rewrites the planned window atomically, refusing to touch
	// visits that are already underway or finished.
	UpdateSchedule(ctx context.Context, visitID string, start, end time.Time) error
	Cancel(ctx context.Context, visitID string) error
}
