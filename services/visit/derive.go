package visit

import (
	"fmt"
	"time"

	"savipets/models"
)

const fiveMinuteWarning = 5 * time.Minute

// Derive computes the countdown state for a visit at the given instant. It is
// pure: the same snapshot and clock reading always produce the same state, so
// any clock source can drive it.
//
// Phases:
//   - not started: the countdown shows the scheduled duration; no clock runs.
//   - in progress: remaining = (scheduledEnd - actualStart) - elapsed. Negative
//     remaining is overtime, rendered "+HH:MM".
//   - completed: frozen at "00:00", elapsed frozen at actualEnd - actualStart.
func Derive(v models.Visit, pendingWrite bool, now time.Time) models.VisitDerivedState {
	d := models.VisitDerivedState{
		VisitID:        v.ID,
		Status:         v.Status,
		IsPendingWrite: pendingWrite,
		ComputedAt:     now,
		Elapsed:        "00:00",
		TimeLeft:       "00:00",
	}

	switch {
	case v.HasEnded():
		if v.HasStarted() {
			d.ElapsedDur = v.ActualEnd.Sub(*v.ActualStart)
			d.Elapsed = formatClock(d.ElapsedDur)
		}

	case v.HasStarted():
		d.ElapsedDur = now.Sub(*v.ActualStart)
		d.Elapsed = formatClock(d.ElapsedDur)
		d.Remaining = v.ScheduledEnd.Sub(*v.ActualStart) - d.ElapsedDur
		if d.Remaining < 0 {
			d.IsOvertime = true
			d.TimeLeft = "+" + formatClock(-d.Remaining)
		} else {
			d.TimeLeft = formatClock(d.Remaining)
			d.IsFiveMinuteWarning = d.Remaining > 0 && d.Remaining <= fiveMinuteWarning
		}

	default:
		// No clock has started running; show the planned duration as-is.
		d.TimeLeft = formatClock(v.ScheduledDuration())
	}

	return d
}

// formatClock renders a non-negative duration as HH:MM, truncating seconds.
func formatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	mins := int(d / time.Minute)
	return fmt.Sprintf("%02d:%02d", mins/60, mins%60)
}
