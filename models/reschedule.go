package models

import "time"

// RescheduleEntryStatus tracks an accepted reschedule request through approval.
type RescheduleEntryStatus string

const (
	ReschedulePending   RescheduleEntryStatus = "pending"
	RescheduleApproved  RescheduleEntryStatus = "approved"
	RescheduleRejected  RescheduleEntryStatus = "rejected"
	RescheduleCancelled RescheduleEntryStatus = "cancelled"
)

// RescheduleEntry is an immutable history record appended to a booking once a
// reschedule request has been accepted for processing.
type RescheduleEntry struct {
	ID           string                `bson:"id" json:"id"`
	OriginalDate time.Time             `bson:"original_date" json:"originalDate"`
	NewDate      time.Time             `bson:"new_date" json:"newDate"`
	Reason       string                `bson:"reason" json:"reason"`
	RequestedBy  string                `bson:"requested_by" json:"requestedBy"`
	RequestedAt  time.Time             `bson:"requested_at" json:"requestedAt"`
	Status       RescheduleEntryStatus `bson:"status" json:"status"`
}

// RescheduleRequest is the transient input to validation. RequestedAt is
// client-stamped and advisory only; validation time comes from the caller.
type RescheduleRequest struct {
	BookingID    string    `json:"bookingId"`
	OriginalDate time.Time `json:"originalDate"`
	NewDate      time.Time `json:"newDate"`
	Reason       string    `json:"reason"`
	RequestedBy  string    `json:"requestedBy"`
	RequestedAt  time.Time `json:"requestedAt"`
}

// Violation is a named, enumerable reason a proposal is disallowed or flagged.
type Violation string

const (
	ViolationBookingNotModifiable  Violation = "bookingNotModifiable"
	ViolationTooLate               Violation = "tooLate"
	ViolationInvalidDate           Violation = "invalidDate"
	ViolationOutsideBusinessHours  Violation = "outsideBusinessHours"
	ViolationSitterConflict        Violation = "sitterConflict"
	ViolationNoReasonProvided      Violation = "noReasonProvided"
	ViolationMaxReschedulesReached Violation = "maxReschedulesExceeded"
)

// RescheduleResult is the validator's output and the contract between the
// validator and its callers. It is never persisted directly.
type RescheduleResult struct {
	Success          bool        `json:"success"`
	NewDate          time.Time   `json:"newDate,omitempty"`
	ConflictDetected bool        `json:"conflictDetected"`
	Violations       []Violation `json:"businessRulesViolated"`

	// AutoApproved means no human review step is needed; RequiresApproval means
	// the request is valid but enters a manual approval workflow downstream.
	AutoApproved     bool `json:"autoApproved"`
	RequiresApproval bool `json:"requiresApproval"`

	RefundEligible    bool   `json:"refundEligible"`
	RefundAmountMinor int64  `json:"-"`
	RefundAmount      string `json:"refundAmount,omitempty"`

	HoursUntilOriginalVisit float64 `json:"hoursUntilOriginalVisit"`
	HoursUntilNewVisit      float64 `json:"hoursUntilNewVisit,omitempty"`
	IsWithinBusinessHours   bool    `json:"isWithinBusinessHours"`

	Message string `json:"message"`
}

// HasViolation reports whether the result carries the given violation.
func (r RescheduleResult) HasViolation(v Violation) bool {
	for _, got := range r.Violations {
		if got == v {
			return true
		}
	}
	return false
}
