package reschedule

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"savipets/config"
	"savipets/models"
	"savipets/utils"
)

// Kind distinguishes a time change from a full cancellation.
type Kind string

const (
	KindReschedule   Kind = "reschedule"
	KindCancellation Kind = "cancellation"
)

// ConflictCheck reports whether the sitter already has an overlapping
// assignment in [start, end). Injected so validation stays free of I/O.
type ConflictCheck func(sitterID string, start, end time.Time) bool

// Input carries everything Validate needs. RescheduleCount is supplied by the
// caller from the booking's history; the validator owns no state.
type Input struct {
	Booking         models.Booking
	Kind            Kind
	NewDate         time.Time
	Reason          string
	RequestedBy     string
	RescheduleCount int
	Now             time.Time
}

// Validate evaluates every rule and aggregates all violations rather than
// short-circuiting, so a caller can report every problem at once. It is
// deterministic: violations come back sorted, and the same input always yields
// the same result.
func Validate(in Input, policy config.PolicyConfig, hasConflict ConflictCheck) models.RescheduleResult {
	res := models.RescheduleResult{NewDate: in.NewDate}
	violations := map[models.Violation]struct{}{}

	res.HoursUntilOriginalVisit = in.Booking.ScheduledDate.Sub(in.Now).Hours()

	if !in.Booking.IsModifiableStatus() {
		violations[models.ViolationBookingNotModifiable] = struct{}{}
	}
	if res.HoursUntilOriginalVisit < policy.MinimumNoticeHours {
		violations[models.ViolationTooLate] = struct{}{}
	}

	switch in.Kind {
	case KindReschedule:
		res.HoursUntilNewVisit = in.NewDate.Sub(in.Now).Hours()

		if !in.NewDate.After(in.Now) {
			violations[models.ViolationInvalidDate] = struct{}{}
		}
		// The notice window applies to the proposed time too: a new slot that
		// is itself inside the window is just as late.
		if res.HoursUntilNewVisit < policy.MinimumNoticeHours {
			violations[models.ViolationTooLate] = struct{}{}
		}

		hour := in.NewDate.Hour()
		res.IsWithinBusinessHours = hour >= policy.BusinessHoursStart && hour < policy.BusinessHoursEnd
		if !res.IsWithinBusinessHours {
			violations[models.ViolationOutsideBusinessHours] = struct{}{}
		}

		if hasConflict != nil {
			newEnd := in.NewDate.Add(time.Duration(in.Booking.DurationMinutes) * time.Minute)
			if hasConflict(in.Booking.SitterID, in.NewDate, newEnd) {
				res.ConflictDetected = true
				violations[models.ViolationSitterConflict] = struct{}{}
			}
		}

		if strings.TrimSpace(in.Reason) == "" {
			violations[models.ViolationNoReasonProvided] = struct{}{}
		}

		if in.RescheduleCount >= policy.MaxReschedulesPerBooking {
			violations[models.ViolationMaxReschedulesReached] = struct{}{}
		}

	case KindCancellation:
		eligible, minor := ComputeRefund(in.Booking, policy, res.HoursUntilOriginalVisit)
		res.RefundEligible = eligible
		res.RefundAmountMinor = minor
		if minor > 0 {
			res.RefundAmount = utils.FormatAmountMinor(minor)
		}
	}

	res.Violations = sortedViolations(violations)
	res.Success = len(res.Violations) == 0

	if res.Success {
		// Cancellations never wait on review; reschedules auto-approve only
		// with enough notice.
		res.AutoApproved = in.Kind == KindCancellation ||
			res.HoursUntilOriginalVisit >= policy.AutoApproveThresholdHours
		res.RequiresApproval = !res.AutoApproved
	}

	res.Message = buildMessage(in.Kind, res)
	return res
}

func sortedViolations(set map[models.Violation]struct{}) []models.Violation {
	out := make([]models.Violation, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func buildMessage(kind Kind, res models.RescheduleResult) string {
	if !res.Success {
		return fmt.Sprintf("%s rejected: %d business rule(s) violated", kind, len(res.Violations))
	}
	if kind == KindCancellation {
		if res.RefundEligible {
			return fmt.Sprintf("cancellation accepted, refund of %s due", res.RefundAmount)
		}
		return "cancellation accepted, no refund due"
	}
	if res.AutoApproved {
		return "reschedule approved"
	}
	return "reschedule accepted, pending manual approval"
}
