package visit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"savipets/database/visitstore"
	"savipets/models"
	"savipets/services/notification"
	"savipets/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultTick = time.Second

// Reconciler merges the authoritative snapshot stream for one visit with a
// local 1 Hz clock and maintains the derived countdown state. It owns exactly
// one subscription handle and one ticker; Stop tears both down together and is
// safe to call any number of times.
type Reconciler struct {
	visitID  string
	store    visitstore.VisitStore
	logger   *zap.Logger
	notifier notification.Dispatcher
	now      func() time.Time
	tick     time.Duration

	mu           sync.RWMutex
	latest       *models.Visit
	derived      models.VisitDerivedState
	pendingWrite bool

	updates  chan models.VisitDerivedState
	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan struct{}
	sub      visitstore.Subscription
}

// Option customizes a Reconciler; used by tests to inject a fake clock and a
// fast tick.
type Option func(*Reconciler)

func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) { r.now = now }
}

func WithTick(d time.Duration) Option {
	return func(r *Reconciler) { r.tick = d }
}

// WithNotifier enables push events on successful lifecycle commands.
func WithNotifier(d notification.Dispatcher) Option {
	return func(r *Reconciler) { r.notifier = d }
}

func NewReconciler(store visitstore.VisitStore, visitID string, logger *zap.Logger, opts ...Option) *Reconciler {
	r := &Reconciler{
		visitID: visitID,
		store:   store,
		logger:  logger,
		now:     time.Now,
		tick:    defaultTick,
		updates: make(chan models.VisitDerivedState, 8),
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start opens the snapshot subscription and launches the reconcile loop. The
// first derived state is available once the store pushes its initial snapshot.
func (r *Reconciler) Start(ctx context.Context) error {
	sub, err := r.store.Subscribe(ctx, r.visitID)
	if err != nil {
		return fmt.Errorf("failed to subscribe to visit %s: %w", r.visitID, err)
	}
	r.sub = sub
	go r.loop()
	return nil
}

// Stop tears down the subscription and the ticker together. Idempotent.
func (r *Reconciler) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopCh)
		if r.sub != nil {
			r.sub.Stop()
		}
	})
}

// Done closes once the reconcile loop has fully exited.
func (r *Reconciler) Done() <-chan struct{} { return r.done }

// Updates emits derived state on every recompute. Latest-wins: slow consumers
// see the newest state, not a backlog.
func (r *Reconciler) Updates() <-chan models.VisitDerivedState { return r.updates }

// Derived returns the last computed state. ok is false until the first
// snapshot has arrived.
func (r *Reconciler) Derived() (models.VisitDerivedState, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.derived, r.latest != nil
}

func (r *Reconciler) loop() {
	defer close(r.done)

	ticker := time.NewTicker(r.tick)
	defer ticker.Stop()

	snaps := r.sub.Snapshots()
	errs := r.sub.Errs()

	for {
		select {
		case snap, ok := <-snaps:
			if !ok {
				// Stream ended; keep serving the last known state off the ticker.
				snaps = nil
				continue
			}
			r.applySnapshot(snap)

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			// Stale-but-valid: log and leave the last good derived state in place.
			warn := &utils.StaleDataWarning{Ref: r.visitID, Err: err}
			r.logger.Warn("visit snapshot stream error", zap.String("visitId", r.visitID), zap.Error(warn))

		case <-ticker.C:
			r.recompute()

		case <-r.stopCh:
			return
		}
	}
}

// applySnapshot replaces the known authoritative fields and recomputes
// immediately rather than waiting for the next tick. A confirmed snapshot also
// resolves any command left in flight.
func (r *Reconciler) applySnapshot(snap visitstore.Snapshot) {
	r.mu.Lock()
	v := snap.Visit
	r.latest = &v
	r.pendingWrite = snap.HasPendingWrites
	r.derived = Derive(v, r.pendingWrite, r.now())
	d := r.derived
	r.mu.Unlock()

	r.emit(d)
}

func (r *Reconciler) recompute() {
	r.mu.Lock()
	if r.latest == nil {
		r.mu.Unlock()
		return
	}
	r.derived = Derive(*r.latest, r.pendingWrite, r.now())
	d := r.derived
	r.mu.Unlock()

	r.emit(d)
}

func (r *Reconciler) emit(d models.VisitDerivedState) {
	for {
		select {
		case r.updates <- d:
			return
		default:
			select {
			case <-r.updates:
			default:
			}
		}
	}
}

// StartVisit records a check-in. The check-in timestamp is stamped server-side
// so device clock skew never leaks into authoritative state; locally only the
// pending-write flag flips until the store confirms.
func (r *Reconciler) StartVisit(ctx context.Context) error {
	return r.command(ctx, "check_in", models.EventVisitStarted, r.store.CheckIn)
}

// EndVisit records a check-out with a server-side timestamp.
func (r *Reconciler) EndVisit(ctx context.Context) error {
	return r.command(ctx, "check_out", models.EventVisitEnded, r.store.CheckOut)
}

// UndoStart reverts an accidental check-in, clearing the actual start time.
func (r *Reconciler) UndoStart(ctx context.Context) error {
	return r.command(ctx, "undo_check_in", models.EventVisitStartUndone, r.store.UndoCheckIn)
}

func (r *Reconciler) command(ctx context.Context, op string, kind models.VisitEventKind, write func(context.Context, string) error) error {
	if err := write(ctx, r.visitID); err != nil {
		failure := &utils.WriteFailure{Op: op, Ref: r.visitID, Err: err}
		r.logger.Error("visit command failed",
			zap.String("visitId", r.visitID), zap.String("op", op), zap.Error(err))
		return failure
	}

	r.mu.Lock()
	r.pendingWrite = true
	latest := r.latest
	r.mu.Unlock()
	r.recompute()

	r.notifyCommand(ctx, kind, latest)
	return nil
}

// notifyCommand pushes the lifecycle event to the client; the sitter is the one
// driving check-in/out from their device. Delivery is best-effort.
func (r *Reconciler) notifyCommand(ctx context.Context, kind models.VisitEventKind, v *models.Visit) {
	if r.notifier == nil || v == nil {
		return
	}
	event := models.VisitEvent{
		EventID:    uuid.New().String(),
		VisitID:    r.visitID,
		BookingID:  v.BookingID,
		ActorID:    v.SitterID,
		Recipient:  v.ClientID,
		Kind:       kind,
		OccurredAt: r.now(),
	}
	if err := r.notifier.Dispatch(ctx, event); err != nil {
		r.logger.Warn("failed to dispatch visit event",
			zap.String("visitId", r.visitID), zap.String("kind", string(kind)), zap.Error(err))
	}
}
