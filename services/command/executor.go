package command

import (
	"context"
	"fmt"
	"time"

	bookingRepo "savipets/database/repository/booking"
	"savipets/database/visitstore"
	"savipets/models"
	"savipets/services/notification"
	"savipets/services/tasks"
	"savipets/utils"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/refund"
	"go.uber.org/zap"
)

const (
	lockTTL      = 10 * time.Second
	reminderLead = time.Hour
)

// Executor applies validated reschedule and cancellation decisions as
// transactional writes. It is the only component with external side effects:
// booking and visit records change here and nowhere else, one command per
// booking at a time.
type Executor struct {
	Bookings  bookingRepo.BookingRepository
	Visits    visitstore.VisitStore
	Locks     *redis.Client
	Notifier  notification.Dispatcher
	Reminders *asynq.Client
	Logger    *zap.Logger
}

// ApplyReschedule executes a validated reschedule. Auto-approved results move
// the booking date and the linked visit window together; results pending
// manual approval only append the history entry, the date moves once the
// downstream approval lands.
//
// Ordering is booking first, then visit: a visit-side failure after the
// booking commit comes back as *utils.PartialWriteFailure with
// BookingUpdated=true so the caller can compensate.
func (e *Executor) ApplyReschedule(ctx context.Context, b *models.Booking, res models.RescheduleResult, req models.RescheduleRequest) (*models.RescheduleEntry, error) {
	if !res.Success {
		return nil, NewNotExecutableError("reschedule result was rejected by validation")
	}

	unlock, err := e.acquireLock(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	entry := models.RescheduleEntry{
		ID:           uuid.New().String(),
		OriginalDate: b.ScheduledDate,
		NewDate:      res.NewDate,
		Reason:       req.Reason,
		RequestedBy:  req.RequestedBy,
		RequestedAt:  req.RequestedAt,
		Status:       models.RescheduleApproved,
	}

	if res.RequiresApproval {
		entry.Status = models.ReschedulePending
		if err := e.Bookings.AppendRescheduleEntry(ctx, b.ID, entry); err != nil {
			return nil, &utils.PartialWriteFailure{BookingID: b.ID, VisitID: b.VisitID, BookingUpdated: false, Err: err}
		}
		return &entry, nil
	}

	if err := e.Bookings.ApplyReschedule(ctx, b.ID, res.NewDate, entry); err != nil {
		return nil, &utils.PartialWriteFailure{BookingID: b.ID, VisitID: b.VisitID, BookingUpdated: false, Err: err}
	}

	if b.VisitID != "" {
		newEnd := res.NewDate.Add(time.Duration(b.DurationMinutes) * time.Minute)
		if err := e.Visits.UpdateSchedule(ctx, b.VisitID, res.NewDate, newEnd); err != nil {
			return nil, &utils.PartialWriteFailure{BookingID: b.ID, VisitID: b.VisitID, BookingUpdated: true, Err: err}
		}
	}

	e.notify(ctx, models.VisitEvent{
		EventID:    uuid.New().String(),
		VisitID:    b.VisitID,
		BookingID:  b.ID,
		ActorID:    req.RequestedBy,
		Recipient:  b.SitterID,
		Kind:       models.EventVisitRescheduled,
		OccurredAt: time.Now(),
	})
	e.scheduleReminder(b, res.NewDate)

	return &entry, nil
}

// ApplyCancellation executes a validated cancellation: booking to cancelled
// with any refund recorded, linked visit to cancelled, refund issued for
// confirmed payments. Same lock and partial-failure contract as reschedules.
func (e *Executor) ApplyCancellation(ctx context.Context, b *models.Booking, res models.RescheduleResult, actorID string) error {
	if !res.Success {
		return NewNotExecutableError("cancellation was rejected by validation")
	}

	unlock, err := e.acquireLock(ctx, b.ID)
	if err != nil {
		return err
	}
	defer unlock()

	refundMinor := int64(0)
	if res.RefundEligible {
		refundMinor = res.RefundAmountMinor
	}

	if err := e.Bookings.Cancel(ctx, b.ID, refundMinor); err != nil {
		return &utils.PartialWriteFailure{BookingID: b.ID, VisitID: b.VisitID, BookingUpdated: false, Err: err}
	}

	if b.VisitID != "" {
		if err := e.Visits.Cancel(ctx, b.VisitID); err != nil {
			return &utils.PartialWriteFailure{BookingID: b.ID, VisitID: b.VisitID, BookingUpdated: true, Err: err}
		}
	}

	if refundMinor > 0 && b.PaymentIntentID != "" {
		e.issueRefund(b, refundMinor)
	}

	e.notify(ctx, models.VisitEvent{
		EventID:    uuid.New().String(),
		VisitID:    b.VisitID,
		BookingID:  b.ID,
		ActorID:    actorID,
		Recipient:  b.SitterID,
		Kind:       models.EventVisitCancelled,
		OccurredAt: time.Now(),
	})

	return nil
}

// acquireLock takes the per-booking command lock. With no lock client wired
// (tests), commands run unguarded.
func (e *Executor) acquireLock(ctx context.Context, bookingID string) (func(), error) {
	if e.Locks == nil {
		return func() {}, nil
	}

	key := "cmd:booking:" + bookingID
	ok, err := e.Locks.SetNX(ctx, key, "1", lockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire command lock for booking %s: %w", bookingID, err)
	}
	if !ok {
		return nil, ErrCommandInFlight
	}
	return func() {
		if err := e.Locks.Del(context.Background(), key).Err(); err != nil {
			e.Logger.Warn("failed to release command lock", zap.String("bookingId", bookingID), zap.Error(err))
		}
	}, nil
}

// issueRefund sends the computed refund to Stripe. Failures are logged, not
// returned: the canonical records already reflect the refund amount and the
// finance reconciliation job retries unsettled refunds.
func (e *Executor) issueRefund(b *models.Booking, amountMinor int64) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(b.PaymentIntentID),
		Amount:        stripe.Int64(amountMinor),
	}
	if _, err := refund.New(params); err != nil {
		e.Logger.Error("stripe refund failed",
			zap.String("bookingId", b.ID),
			zap.Int64("amountMinor", amountMinor),
			zap.Error(err))
		return
	}
	e.Logger.Info("refund issued",
		zap.String("bookingId", b.ID),
		zap.Int64("amountMinor", amountMinor))
}

func (e *Executor) notify(ctx context.Context, event models.VisitEvent) {
	if e.Notifier == nil {
		return
	}
	if err := e.Notifier.Dispatch(ctx, event); err != nil {
		e.Logger.Warn("failed to dispatch visit event",
			zap.String("kind", string(event.Kind)),
			zap.String("bookingId", event.BookingID),
			zap.Error(err))
	}
}

// scheduleReminder queues a push reminder an hour before the new visit time.
func (e *Executor) scheduleReminder(b *models.Booking, newDate time.Time) {
	if e.Reminders == nil {
		return
	}
	fireAt := newDate.Add(-reminderLead)
	if !fireAt.After(time.Now()) {
		return
	}

	payload := models.ReminderPayload{
		ReminderID: uuid.New().String(),
		VisitID:    b.VisitID,
		BookingID:  b.ID,
		Recipient:  b.ClientID,
		FireDate:   fireAt.Format(time.RFC3339),
	}
	task, opts, err := tasks.NewVisitReminderTask(payload, fireAt)
	if err != nil {
		e.Logger.Warn("failed to build reminder task", zap.String("bookingId", b.ID), zap.Error(err))
		return
	}
	if _, err := e.Reminders.Enqueue(task, opts...); err != nil {
		e.Logger.Warn("failed to enqueue reminder task", zap.String("bookingId", b.ID), zap.Error(err))
	}
}
