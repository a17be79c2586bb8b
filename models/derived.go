package models

import "time"

// VisitDerivedState is the countdown state computed from the latest authoritative
// visit snapshot plus the local clock. It is never persisted.
type VisitDerivedState struct {
	VisitID string      `json:"visitId"`
	Status  VisitStatus `json:"status"`

	// TimeLeft is the HH:MM countdown. Before check-in it shows the scheduled
	// duration; in overtime it is prefixed with "+"; after check-out it is
	// frozen at "00:00".
	TimeLeft string `json:"timeLeft"`
	// Elapsed is the HH:MM time since check-in, frozen at check-out.
	Elapsed string `json:"elapsed"`

	// Remaining is the signed remainder against the scheduled deadline while the
	// visit is in progress; negative means overtime.
	Remaining time.Duration `json:"-"`
	// ElapsedDur is the raw elapsed duration backing Elapsed.
	ElapsedDur time.Duration `json:"-"`

	IsOvertime          bool `json:"isOvertime"`
	IsFiveMinuteWarning bool `json:"isFiveMinuteWarning"`
	// IsPendingWrite mirrors the unconfirmed-local-write flag; it never feeds
	// into the countdown math.
	IsPendingWrite bool `json:"isPendingWrite"`

	ComputedAt time.Time `json:"computedAt"`
}
