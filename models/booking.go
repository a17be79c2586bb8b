package models

import "time"

// BookingStatus tracks the commercial record backing a visit.
type BookingStatus string

const (
	BookingPending    BookingStatus = "pending"
	BookingApproved   BookingStatus = "approved"
	BookingInProgress BookingStatus = "in_progress"
	BookingCompleted  BookingStatus = "completed"
	BookingCancelled  BookingStatus = "cancelled"
)

// PaymentStatus reflects what has been charged for a booking.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentConfirmed PaymentStatus = "confirmed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// Booking represents the commercial record for a scheduled visit. Prices travel
// as decimal strings and are converted to integer minor units for all math.
type Booking struct {
	ID              string            `bson:"id" json:"id"`
	ClientID        string            `bson:"client_id" json:"clientId"`
	SitterID        string            `bson:"sitter_id" json:"sitterId"`
	VisitID         string            `bson:"visit_id,omitempty" json:"visitId,omitempty"`
	ScheduledDate   time.Time         `bson:"scheduled_date" json:"scheduledDate"`
	DurationMinutes int               `bson:"duration_minutes" json:"durationMinutes"`
	Price           string            `bson:"price" json:"price"`
	Currency        string            `bson:"currency" json:"currency"`
	Status          BookingStatus     `bson:"status" json:"status"`
	PaymentStatus   PaymentStatus     `bson:"payment_status" json:"paymentStatus"`
	PaymentIntentID string            `bson:"payment_intent_id,omitempty" json:"-"`
	RefundAmount    string            `bson:"refund_amount,omitempty" json:"refundAmount,omitempty"`
	Reschedules     []RescheduleEntry `bson:"reschedules,omitempty" json:"reschedules,omitempty"`
	CreatedAt       time.Time         `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time         `bson:"updated_at" json:"updatedAt"`
}

// ScheduledEnd is the booking's end implied by its date and duration.
func (b Booking) ScheduledEnd() time.Time {
	return b.ScheduledDate.Add(time.Duration(b.DurationMinutes) * time.Minute)
}

// IsModifiableStatus reports whether the booking's status still allows
// reschedule or cancellation. The notice-window half of modifiability is
// time-dependent and lives with the validator.
func (b Booking) IsModifiableStatus() bool {
	return b.Status == BookingPending || b.Status == BookingApproved
}

// RescheduleCount counts history entries that consumed a reschedule slot.
// Rejected attempts do not count against the per-booking limit.
func (b Booking) RescheduleCount() int {
	n := 0
	for _, e := range b.Reschedules {
		if e.Status == RescheduleApproved || e.Status == ReschedulePending {
			n++
		}
	}
	return n
}
