package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"savipets/database"
	"savipets/models"
	"savipets/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const defaultTimeout = 5 * time.Second

// MongoBookingRepo is the MongoDB implementation of BookingRepository.
type MongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo returns a repo backed by the global Mongo client.
func NewMongoBookingRepo() *MongoBookingRepo {
	return &MongoBookingRepo{
		coll: database.MongoClient.Database("savipets").Collection("bookings"),
	}
}

func (repo *MongoBookingRepo) Create(ctx context.Context, b *models.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now
	if _, err := repo.coll.InsertOne(ctx, b); err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	return nil
}

func (repo *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var b models.Booking
	if err := repo.coll.FindOne(ctx, bson.M{"id": id}).Decode(&b); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("booking %s not found", id)
		}
		return nil, fmt.Errorf("failed to fetch booking %s: %w", id, err)
	}
	return &b, nil
}

func (repo *MongoBookingRepo) ListSitterBookingsInWindow(ctx context.Context, sitterID string, from, to time.Time) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	// Overlap test on [scheduled_date, scheduled_date + duration). Duration is
	// bounded by maxVisitMinutes, so pre-filter on scheduled_date to keep the
	// query on the index and finish the overlap check in memory.
	const maxVisitMinutes = 24 * 60
	filter := bson.M{
		"sitter_id": sitterID,
		"status":    bson.M{"$in": []models.BookingStatus{models.BookingPending, models.BookingApproved, models.BookingInProgress}},
		"scheduled_date": bson.M{
			"$lt":  to,
			"$gte": from.Add(-maxVisitMinutes * time.Minute),
		},
	}

	cur, err := repo.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list sitter bookings: %w", err)
	}
	defer cur.Close(ctx)

	var out []models.Booking
	for cur.Next(ctx) {
		var b models.Booking
		if err := cur.Decode(&b); err != nil {
			return nil, fmt.Errorf("failed to decode booking: %w", err)
		}
		if b.ScheduledEnd().After(from) && b.ScheduledDate.Before(to) {
			out = append(out, b)
		}
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("cursor error listing sitter bookings: %w", err)
	}
	return out, nil
}

func (repo *MongoBookingRepo) ApplyReschedule(ctx context.Context, bookingID string, newDate time.Time, entry models.RescheduleEntry) error {
	update := bson.M{
		"$set": bson.M{
			"scheduled_date": newDate,
			"updated_at":     time.Now(),
		},
		"$push": bson.M{"reschedules": entry},
	}
	return repo.updateTransactionally(ctx, bookingID, update)
}

func (repo *MongoBookingRepo) AppendRescheduleEntry(ctx context.Context, bookingID string, entry models.RescheduleEntry) error {
	update := bson.M{
		"$set":  bson.M{"updated_at": time.Now()},
		"$push": bson.M{"reschedules": entry},
	}
	return repo.updateTransactionally(ctx, bookingID, update)
}

func (repo *MongoBookingRepo) Cancel(ctx context.Context, bookingID string, refundMinor int64) error {
	set := bson.M{
		"status":     models.BookingCancelled,
		"updated_at": time.Now(),
	}
	if refundMinor > 0 {
		set["refund_amount"] = utils.FormatAmountMinor(refundMinor)
		set["payment_status"] = models.PaymentRefunded
	}
	return repo.updateTransactionally(ctx, bookingID, bson.M{"$set": set})
}

// updateTransactionally applies a single booking update inside a Mongo session
// so the scheduled-date move and the history append commit together.
func (repo *MongoBookingRepo) updateTransactionally(ctx context.Context, bookingID string, update bson.M) error {
	client := repo.coll.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnFn := func(sc mongo.SessionContext) error {
		res, err := repo.coll.UpdateOne(sc, bson.M{"id": bookingID}, update)
		if err != nil {
			return fmt.Errorf("booking update failed: %w", err)
		}
		if res.MatchedCount == 0 {
			return fmt.Errorf("booking %s not found", bookingID)
		}
		return nil
	}

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		return fmt.Errorf("booking transaction failed: %w", err)
	}

	return nil
}
