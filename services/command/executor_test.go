package command

import (
	"context"
	"errors"
	"testing"
	"time"

	"savipets/database/visitstore"
	"savipets/models"
	"savipets/utils"

	"go.uber.org/zap"
)

type fakeBookingRepo struct {
	applyErr  error
	appendErr error
	cancelErr error

	applied   []time.Time
	appended  []models.RescheduleEntry
	cancelled []int64
}

func (f *fakeBookingRepo) Create(ctx context.Context, b *models.Booking) error { return nil }

func (f *fakeBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeBookingRepo) ListSitterBookingsInWindow(ctx context.Context, sitterID string, from, to time.Time) ([]models.Booking, error) {
	return nil, nil
}

func (f *fakeBookingRepo) ApplyReschedule(ctx context.Context, bookingID string, newDate time.Time, entry models.RescheduleEntry) error {
	if f.applyErr != nil {
		return f.applyErr
	}
	f.applied = append(f.applied, newDate)
	return nil
}

func (f *fakeBookingRepo) AppendRescheduleEntry(ctx context.Context, bookingID string, entry models.RescheduleEntry) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appended = append(f.appended, entry)
	return nil
}

func (f *fakeBookingRepo) Cancel(ctx context.Context, bookingID string, refundMinor int64) error {
	if f.cancelErr != nil {
		return f.cancelErr
	}
	f.cancelled = append(f.cancelled, refundMinor)
	return nil
}

type fakeVisitStore struct {
	updateErr error
	cancelErr error

	updates []time.Time
	cancels int
}

func (f *fakeVisitStore) Get(ctx context.Context, visitID string) (*models.Visit, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeVisitStore) Subscribe(ctx context.Context, visitID string) (visitstore.Subscription, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeVisitStore) CheckIn(ctx context.Context, visitID string) error     { return nil }
func (f *fakeVisitStore) CheckOut(ctx context.Context, visitID string) error    { return nil }
func (f *fakeVisitStore) UndoCheckIn(ctx context.Context, visitID string) error { return nil }

func (f *fakeVisitStore) UpdateSchedule(ctx context.Context, visitID string, start, end time.Time) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates = append(f.updates, start)
	return nil
}

func (f *fakeVisitStore) Cancel(ctx context.Context, visitID string) error {
	if f.cancelErr != nil {
		return f.cancelErr
	}
	f.cancels++
	return nil
}

type fakeDispatcher struct {
	events []models.VisitEvent
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, e models.VisitEvent) error {
	f.events = append(f.events, e)
	return nil
}

func testBooking() *models.Booking {
	return &models.Booking{
		ID:              "booking-1",
		ClientID:        "client-1",
		SitterID:        "sitter-1",
		VisitID:         "visit-1",
		ScheduledDate:   time.Now().Add(72 * time.Hour),
		DurationMinutes: 60,
		Price:           "100.00",
		Currency:        "USD",
		Status:          models.BookingApproved,
		PaymentStatus:   models.PaymentConfirmed,
	}
}

func newExecutor(bookings *fakeBookingRepo, visits *fakeVisitStore, notifier *fakeDispatcher) *Executor {
	e := &Executor{
		Bookings: bookings,
		Visits:   visits,
		Logger:   zap.NewNop(),
	}
	if notifier != nil {
		e.Notifier = notifier
	}
	return e
}

func approvedResult(newDate time.Time) models.RescheduleResult {
	return models.RescheduleResult{
		Success:      true,
		NewDate:      newDate,
		AutoApproved: true,
	}
}

func TestApplyRescheduleRejectsFailedValidation(t *testing.T) {
	e := newExecutor(&fakeBookingRepo{}, &fakeVisitStore{}, nil)

	_, err := e.ApplyReschedule(context.Background(), testBooking(),
		models.RescheduleResult{Success: false}, models.RescheduleRequest{})

	var ce *CommandError
	if !errors.As(err, &ce) || ce.Code != "notExecutable" {
		t.Fatalf("expected notExecutable CommandError, got %v", err)
	}
}

func TestApplyRescheduleAutoApproved(t *testing.T) {
	bookings := &fakeBookingRepo{}
	visits := &fakeVisitStore{}
	notifier := &fakeDispatcher{}
	e := newExecutor(bookings, visits, notifier)

	newDate := time.Now().Add(96 * time.Hour)
	b := testBooking()
	req := models.RescheduleRequest{Reason: "clash", RequestedBy: "client-1", RequestedAt: time.Now()}

	entry, err := e.ApplyReschedule(context.Background(), b, approvedResult(newDate), req)
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	if entry.Status != models.RescheduleApproved {
		t.Errorf("entry status = %s, want approved", entry.Status)
	}
	if entry.OriginalDate != b.ScheduledDate {
		t.Error("entry must record the pre-move date")
	}
	if len(bookings.applied) != 1 || !bookings.applied[0].Equal(newDate) {
		t.Errorf("booking moves = %v, want one move to %v", bookings.applied, newDate)
	}
	if len(visits.updates) != 1 || !visits.updates[0].Equal(newDate) {
		t.Errorf("visit window moves = %v, want one move to %v", visits.updates, newDate)
	}
	if len(notifier.events) != 1 || notifier.events[0].Kind != models.EventVisitRescheduled {
		t.Errorf("events = %v, want one visit_rescheduled", notifier.events)
	}
	if notifier.events[0].Recipient != b.SitterID {
		t.Error("the sitter is notified of client-driven changes")
	}
}

func TestApplyReschedulePendingApprovalOnlyAppendsHistory(t *testing.T) {
	bookings := &fakeBookingRepo{}
	visits := &fakeVisitStore{}
	e := newExecutor(bookings, visits, nil)

	res := models.RescheduleResult{
		Success:          true,
		NewDate:          time.Now().Add(96 * time.Hour),
		RequiresApproval: true,
	}

	entry, err := e.ApplyReschedule(context.Background(), testBooking(), res, models.RescheduleRequest{RequestedBy: "client-1"})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	if entry.Status != models.ReschedulePending {
		t.Errorf("entry status = %s, want pending", entry.Status)
	}
	if len(bookings.appended) != 1 {
		t.Errorf("appended entries = %d, want 1", len(bookings.appended))
	}
	if len(bookings.applied) != 0 {
		t.Error("a pending reschedule must not move the booking date")
	}
	if len(visits.updates) != 0 {
		t.Error("a pending reschedule must not touch the visit window")
	}
}

func TestApplyRescheduleBookingFailure(t *testing.T) {
	bookings := &fakeBookingRepo{applyErr: errors.New("write conflict")}
	visits := &fakeVisitStore{}
	e := newExecutor(bookings, visits, nil)

	_, err := e.ApplyReschedule(context.Background(), testBooking(),
		approvedResult(time.Now().Add(96*time.Hour)), models.RescheduleRequest{})

	pwf := requirePartialWriteFailure(t, err)
	if pwf.BookingUpdated {
		t.Error("booking write failed before the commit, BookingUpdated must be false")
	}
	if len(visits.updates) != 0 {
		t.Error("visit window must not move after a booking failure")
	}
}

func TestApplyRescheduleVisitFailureAfterBookingCommit(t *testing.T) {
	bookings := &fakeBookingRepo{}
	visits := &fakeVisitStore{updateErr: errors.New("firestore unavailable")}
	e := newExecutor(bookings, visits, nil)

	_, err := e.ApplyReschedule(context.Background(), testBooking(),
		approvedResult(time.Now().Add(96*time.Hour)), models.RescheduleRequest{})

	pwf := requirePartialWriteFailure(t, err)
	if !pwf.BookingUpdated {
		t.Error("the booking committed before the visit write failed, BookingUpdated must be true")
	}
	if pwf.VisitID != "visit-1" {
		t.Errorf("VisitID = %q, want visit-1", pwf.VisitID)
	}
	if len(bookings.applied) != 1 {
		t.Error("the booking commit should have gone through")
	}
}

func TestApplyRescheduleWithoutLinkedVisit(t *testing.T) {
	bookings := &fakeBookingRepo{}
	visits := &fakeVisitStore{updateErr: errors.New("must not be called")}
	e := newExecutor(bookings, visits, nil)

	b := testBooking()
	b.VisitID = ""

	if _, err := e.ApplyReschedule(context.Background(), b,
		approvedResult(time.Now().Add(96*time.Hour)), models.RescheduleRequest{}); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
}

func TestApplyCancellation(t *testing.T) {
	bookings := &fakeBookingRepo{}
	visits := &fakeVisitStore{}
	notifier := &fakeDispatcher{}
	e := newExecutor(bookings, visits, notifier)

	res := models.RescheduleResult{
		Success:           true,
		AutoApproved:      true,
		RefundEligible:    true,
		RefundAmountMinor: 7500,
	}

	if err := e.ApplyCancellation(context.Background(), testBooking(), res, "client-1"); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	if len(bookings.cancelled) != 1 || bookings.cancelled[0] != 7500 {
		t.Errorf("cancels = %v, want one with 7500 minor units", bookings.cancelled)
	}
	if visits.cancels != 1 {
		t.Errorf("visit cancels = %d, want 1", visits.cancels)
	}
	if len(notifier.events) != 1 || notifier.events[0].Kind != models.EventVisitCancelled {
		t.Errorf("events = %v, want one visit_cancelled", notifier.events)
	}
}

func TestApplyCancellationNoRefund(t *testing.T) {
	bookings := &fakeBookingRepo{}
	e := newExecutor(bookings, &fakeVisitStore{}, nil)

	res := models.RescheduleResult{Success: true, AutoApproved: true}

	if err := e.ApplyCancellation(context.Background(), testBooking(), res, "client-1"); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if len(bookings.cancelled) != 1 || bookings.cancelled[0] != 0 {
		t.Errorf("cancels = %v, want one with zero refund", bookings.cancelled)
	}
}

func TestApplyCancellationVisitFailure(t *testing.T) {
	bookings := &fakeBookingRepo{}
	visits := &fakeVisitStore{cancelErr: errors.New("firestore unavailable")}
	e := newExecutor(bookings, visits, nil)

	res := models.RescheduleResult{Success: true, AutoApproved: true}
	err := e.ApplyCancellation(context.Background(), testBooking(), res, "client-1")

	pwf := requirePartialWriteFailure(t, err)
	if !pwf.BookingUpdated {
		t.Error("the booking cancelled before the visit write failed, BookingUpdated must be true")
	}
}

func requirePartialWriteFailure(t *testing.T, err error) *utils.PartialWriteFailure {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error")
	}
	var pwf *utils.PartialWriteFailure
	if !errors.As(err, &pwf) {
		t.Fatalf("expected *utils.PartialWriteFailure, got %T: %v", err, err)
	}
	return pwf
}
