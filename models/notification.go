package models

import "time"

// VisitEventKind identifies what happened to a visit.
type VisitEventKind string

const (
	EventVisitStarted     VisitEventKind = "visit_started"
	EventVisitEnded       VisitEventKind = "visit_ended"
	EventVisitStartUndone VisitEventKind = "visit_start_undone"
	EventVisitRescheduled VisitEventKind = "visit_rescheduled"
	EventVisitCancelled   VisitEventKind = "visit_cancelled"
	EventVisitReminder    VisitEventKind = "visit_reminder"
)

// VisitEvent is emitted by the command executor after a successful state change.
// The notification subsystem owns message content; the event carries routing
// data only.
type VisitEvent struct {
	EventID    string         `json:"eventId"`
	VisitID    string         `json:"visitId"`
	BookingID  string         `json:"bookingId,omitempty"`
	ActorID    string         `json:"actorId"`
	Recipient  string         `json:"recipient"`
	Kind       VisitEventKind `json:"kind"`
	OccurredAt time.Time      `json:"occurredAt"`
}

// ReminderPayload is the asynq task body for a scheduled visit reminder.
type ReminderPayload struct {
	ReminderID string `json:"reminderId"`
	VisitID    string `json:"visitId"`
	BookingID  string `json:"bookingId"`
	Recipient  string `json:"recipient"`
	FireDate   string `json:"fireDate"`
}
