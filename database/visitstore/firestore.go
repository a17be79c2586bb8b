package visitstore

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"savipets/models"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const writeTimeout = 5 * time.Second

// FirestoreVisitStore keeps visit documents in a Firestore collection and
// serves live document watches as snapshot subscriptions.
type FirestoreVisitStore struct {
	client *firestore.Client
	coll   string
	logger *zap.Logger

	openSubs int64
}

func NewFirestoreVisitStore(client *firestore.Client, coll string, logger *zap.Logger) *FirestoreVisitStore {
	return &FirestoreVisitStore{client: client, coll: coll, logger: logger}
}

// OpenSubscriptions reports how many snapshot streams are currently live.
func (s *FirestoreVisitStore) OpenSubscriptions() int {
	return int(atomic.LoadInt64(&s.openSubs))
}

func (s *FirestoreVisitStore) doc(visitID string) *firestore.DocumentRef {
	return s.client.Collection(s.coll).Doc(visitID)
}

func (s *FirestoreVisitStore) Get(ctx context.Context, visitID string) (*models.Visit, error) {
	snap, err := s.doc(visitID).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch visit %s: %w", visitID, err)
	}
	var v models.Visit
	if err := snap.DataTo(&v); err != nil {
		return nil, fmt.Errorf("failed to decode visit %s: %w", visitID, err)
	}
	v.ID = snap.Ref.ID
	return &v, nil
}

type firestoreSubscription struct {
	snaps    chan Snapshot
	errs     chan error
	cancel   context.CancelFunc
	stopOnce sync.Once
}

func (sub *firestoreSubscription) Snapshots() <-chan Snapshot { return sub.snaps }
func (sub *firestoreSubscription) Errs() <-chan error         { return sub.errs }

// Stop cancels the watch. Safe to call multiple times; the channels close once
// the watch goroutine drains out.
func (sub *firestoreSubscription) Stop() {
	sub.stopOnce.Do(sub.cancel)
}

func (s *FirestoreVisitStore) Subscribe(ctx context.Context, visitID string) (Subscription, error) {
	watchCtx, cancel := context.WithCancel(ctx)
	sub := &firestoreSubscription{
		snaps:  make(chan Snapshot, 1),
		errs:   make(chan error, 1),
		cancel: cancel,
	}

	iter := s.doc(visitID).Snapshots(watchCtx)
	atomic.AddInt64(&s.openSubs, 1)

	go func() {
		defer func() {
			iter.Stop()
			close(sub.snaps)
			close(sub.errs)
			atomic.AddInt64(&s.openSubs, -1)
		}()

		for {
			snap, err := iter.Next()
			if err != nil {
				if status.Code(err) == codes.Canceled || watchCtx.Err() != nil {
					return
				}
				select {
				case sub.errs <- err:
				case <-watchCtx.Done():
				}
				return
			}
			if !snap.Exists() {
				continue
			}

			var v models.Visit
			if err := snap.DataTo(&v); err != nil {
				s.logger.Warn("skipping undecodable visit snapshot",
					zap.String("visitId", visitID), zap.Error(err))
				continue
			}
			v.ID = snap.Ref.ID

			out := Snapshot{Visit: v, ReadAt: snap.ReadTime}
			select {
			case sub.snaps <- out:
			case <-watchCtx.Done():
				return
			default:
				// Latest-wins: drop the stale buffered snapshot and replace it.
				select {
				case <-sub.snaps:
				default:
				}
				select {
				case sub.snaps <- out:
				case <-watchCtx.Done():
					return
				}
			}
		}
	}()

	return sub, nil
}

func (s *FirestoreVisitStore) CheckIn(ctx context.Context, visitID string) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	_, err := s.doc(visitID).Update(ctx, []firestore.Update{
		{Path: "status", Value: models.VisitInProgress},
		{Path: "actualStart", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		return fmt.Errorf("check-in write for visit %s failed: %w", visitID, err)
	}
	return nil
}

func (s *FirestoreVisitStore) CheckOut(ctx context.Context, visitID string) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	_, err := s.doc(visitID).Update(ctx, []firestore.Update{
		{Path: "status", Value: models.VisitCompleted},
		{Path: "actualEnd", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		return fmt.Errorf("check-out write for visit %s failed: %w", visitID, err)
	}
	return nil
}

func (s *FirestoreVisitStore) UndoCheckIn(ctx context.Context, visitID string) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	_, err := s.doc(visitID).Update(ctx, []firestore.Update{
		{Path: "status", Value: models.VisitScheduled},
		{Path: "actualStart", Value: firestore.Delete},
	})
	if err != nil {
		return fmt.Errorf("undo check-in write for visit %s failed: %w", visitID, err)
	}
	return nil
}

func (s *FirestoreVisitStore) UpdateSchedule(ctx context.Context, visitID string, start, end time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	ref := s.doc(visitID)
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		var v models.Visit
		if err := snap.DataTo(&v); err != nil {
			return err
		}
		if v.Status != models.VisitScheduled {
			return fmt.Errorf("visit %s is %s, schedule is frozen", visitID, v.Status)
		}
		return tx.Update(ref, []firestore.Update{
			{Path: "scheduledStart", Value: start},
			{Path: "scheduledEnd", Value: end},
		})
	})
	if err != nil {
		return fmt.Errorf("schedule update for visit %s failed: %w", visitID, err)
	}
	return nil
}

func (s *FirestoreVisitStore) Cancel(ctx context.Context, visitID string) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	ref := s.doc(visitID)
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		var v models.Visit
		if err := snap.DataTo(&v); err != nil {
			return err
		}
		if v.Status == models.VisitCompleted || v.Status == models.VisitCancelled {
			return fmt.Errorf("visit %s is %s and cannot be cancelled", visitID, v.Status)
		}
		return tx.Update(ref, []firestore.Update{
			{Path: "status", Value: models.VisitCancelled},
		})
	})
	if err != nil {
		return fmt.Errorf("cancel write for visit %s failed: %w", visitID, err)
	}
	return nil
}
