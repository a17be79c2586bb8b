package models

import "time"

// VisitStatus tracks a visit through its lifecycle. Cancelled is terminal.
type VisitStatus string

const (
	VisitScheduled  VisitStatus = "scheduled"
	VisitInProgress VisitStatus = "in_progress"
	VisitCompleted  VisitStatus = "completed"
	VisitCancelled  VisitStatus = "cancelled"
)

// Visit is one scheduled service occurrence, stored as a Firestore document.
// ScheduledStart/ScheduledEnd are the authoritative planned window; ActualStart
// and ActualEnd are only ever stamped server-side at check-in and check-out.
type Visit struct {
	ID             string      `firestore:"-" json:"id"`
	BookingID      string      `firestore:"bookingId" json:"bookingId"`
	SitterID       string      `firestore:"sitterId" json:"sitterId"`
	ClientID       string      `firestore:"clientId" json:"clientId"`
	ScheduledStart time.Time   `firestore:"scheduledStart" json:"scheduledStart"`
	ScheduledEnd   time.Time   `firestore:"scheduledEnd" json:"scheduledEnd"`
	ActualStart    *time.Time  `firestore:"actualStart" json:"actualStart,omitempty"`
	ActualEnd      *time.Time  `firestore:"actualEnd" json:"actualEnd,omitempty"`
	Status         VisitStatus `firestore:"status" json:"status"`
}

// ScheduledDuration is the planned length of the visit.
func (v Visit) ScheduledDuration() time.Duration {
	return v.ScheduledEnd.Sub(v.ScheduledStart)
}

// HasStarted reports whether a check-in has been recorded.
func (v Visit) HasStarted() bool {
	return v.ActualStart != nil
}

// HasEnded reports whether a check-out has been recorded.
func (v Visit) HasEnded() bool {
	return v.ActualEnd != nil
}
