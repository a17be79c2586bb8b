package visit

import (
	"testing"
	"time"

	"savipets/models"
)

func mkTime(h, m int) time.Time {
	return time.Date(2025, 6, 10, h, m, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time { return &t }

func scheduledVisit() models.Visit {
	return models.Visit{
		ID:             "visit-1",
		BookingID:      "booking-1",
		SitterID:       "sitter-1",
		ClientID:       "client-1",
		ScheduledStart: mkTime(14, 0),
		ScheduledEnd:   mkTime(14, 30),
		Status:         models.VisitScheduled,
	}
}

func TestDeriveNotStarted(t *testing.T) {
	v := scheduledVisit()

	// Before check-in the countdown shows the scheduled duration; wall-clock
	// time must not matter.
	for _, now := range []time.Time{mkTime(9, 0), mkTime(14, 15), mkTime(18, 0)} {
		d := Derive(v, false, now)
		if d.TimeLeft != "00:30" {
			t.Errorf("now=%v: expected TimeLeft '00:30', got %q", now, d.TimeLeft)
		}
		if d.Elapsed != "00:00" {
			t.Errorf("now=%v: expected Elapsed '00:00', got %q", now, d.Elapsed)
		}
		if d.IsOvertime || d.IsFiveMinuteWarning {
			t.Errorf("now=%v: no flags expected before check-in", now)
		}
	}
}

func TestDeriveLateStartOvertime(t *testing.T) {
	v := scheduledVisit()
	v.Status = models.VisitInProgress
	v.ActualStart = ptr(mkTime(14, 5))

	d := Derive(v, false, mkTime(14, 33))

	if !d.IsOvertime {
		t.Error("expected overtime at 14:33 for a 14:00-14:30 visit")
	}
	if d.TimeLeft != "+00:03" {
		t.Errorf("expected TimeLeft '+00:03', got %q", d.TimeLeft)
	}
	if d.Elapsed != "00:28" {
		t.Errorf("expected Elapsed '00:28', got %q", d.Elapsed)
	}
	if d.IsFiveMinuteWarning {
		t.Error("overtime and five-minute warning are mutually exclusive")
	}
}

func TestDeriveDecomposition(t *testing.T) {
	v := scheduledVisit()
	v.Status = models.VisitInProgress
	v.ActualStart = ptr(mkTime(14, 5))

	for _, now := range []time.Time{mkTime(14, 6), mkTime(14, 20), mkTime(14, 29), mkTime(14, 40)} {
		d := Derive(v, false, now)
		want := v.ScheduledEnd.Sub(*v.ActualStart)
		if got := d.ElapsedDur + d.Remaining; got != want {
			t.Errorf("now=%v: elapsed+remaining = %v, want %v", now, got, want)
		}
	}
}

func TestDeriveFiveMinuteWarningBoundaries(t *testing.T) {
	v := scheduledVisit()
	v.Status = models.VisitInProgress
	v.ActualStart = ptr(mkTime(14, 0))

	tests := []struct {
		name         string
		now          time.Time
		wantWarning  bool
		wantOvertime bool
	}{
		{"well before deadline", mkTime(14, 20), false, false},
		{"just inside warning window", v.ScheduledEnd.Add(-5 * time.Minute), true, false},
		{"one second outside window", v.ScheduledEnd.Add(-5*time.Minute - time.Second), false, false},
		{"exactly at deadline", v.ScheduledEnd, false, false},
		{"one second over", v.ScheduledEnd.Add(time.Second), false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Derive(v, false, tt.now)
			if d.IsFiveMinuteWarning != tt.wantWarning {
				t.Errorf("IsFiveMinuteWarning = %v, want %v", d.IsFiveMinuteWarning, tt.wantWarning)
			}
			if d.IsOvertime != tt.wantOvertime {
				t.Errorf("IsOvertime = %v, want %v", d.IsOvertime, tt.wantOvertime)
			}
		})
	}
}

func TestDeriveOvertimePersistsUntilCheckout(t *testing.T) {
	v := scheduledVisit()
	v.Status = models.VisitInProgress
	v.ActualStart = ptr(mkTime(14, 0))

	for _, now := range []time.Time{mkTime(14, 31), mkTime(15, 0), mkTime(16, 45)} {
		if d := Derive(v, false, now); !d.IsOvertime {
			t.Errorf("now=%v: overtime should persist until check-out", now)
		}
	}

	v.Status = models.VisitCompleted
	v.ActualEnd = ptr(mkTime(15, 0))
	if d := Derive(v, false, mkTime(16, 0)); d.IsOvertime {
		t.Error("completed visit must not report overtime")
	}
}

func TestDeriveCompletedFrozen(t *testing.T) {
	v := scheduledVisit()
	v.Status = models.VisitCompleted
	v.ActualStart = ptr(mkTime(14, 5))
	v.ActualEnd = ptr(mkTime(14, 50))

	for _, now := range []time.Time{mkTime(14, 50), mkTime(18, 0), mkTime(23, 59)} {
		d := Derive(v, false, now)
		if d.TimeLeft != "00:00" {
			t.Errorf("now=%v: expected frozen TimeLeft '00:00', got %q", now, d.TimeLeft)
		}
		if d.Elapsed != "00:45" {
			t.Errorf("now=%v: expected frozen Elapsed '00:45', got %q", now, d.Elapsed)
		}
	}
}

func TestDerivePendingWriteDoesNotAffectMath(t *testing.T) {
	v := scheduledVisit()
	v.Status = models.VisitInProgress
	v.ActualStart = ptr(mkTime(14, 5))
	now := mkTime(14, 20)

	confirmed := Derive(v, false, now)
	pending := Derive(v, true, now)

	if !pending.IsPendingWrite || confirmed.IsPendingWrite {
		t.Fatal("pending-write flag should mirror the input")
	}
	pending.IsPendingWrite = false
	if pending != confirmed {
		t.Error("pending-write flag must never change the countdown math")
	}
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00"},
		{59 * time.Second, "00:00"},
		{time.Minute, "00:01"},
		{30 * time.Minute, "00:30"},
		{90 * time.Minute, "01:30"},
		{25 * time.Hour, "25:00"},
	}
	for _, tt := range tests {
		if got := formatClock(tt.d); got != tt.want {
			t.Errorf("formatClock(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
