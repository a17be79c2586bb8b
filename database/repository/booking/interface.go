package bookingRepo

import (
	"context"
	"time"

	"savipets/models"
)

// BookingRepository defines persistence operations for booking records.
type BookingRepository interface {
	Create(ctx context.Context, b *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)

	// ListSitterBookingsInWindow returns active bookings for a sitter whose
	// scheduled window overlaps [from, to). Used for conflict detection.
	ListSitterBookingsInWindow(ctx context.Context, sitterID string, from, to time.Time) ([]models.Booking, error)

	// ApplyReschedule moves the booking to newDate and appends the history
	// entry in one transaction.
	ApplyReschedule(ctx context.Context, bookingID string, newDate time.Time, entry models.RescheduleEntry) error

	// AppendRescheduleEntry records a pending reschedule without moving the
	// scheduled date; the date moves once the entry is approved.
	AppendRescheduleEntry(ctx context.Context, bookingID string, entry models.RescheduleEntry) error

	// Cancel marks the booking cancelled and records the refund, if any, in one
	// transaction.
	Cancel(ctx context.Context, bookingID string, refundMinor int64) error
}
