package command

import (
	"context"
	"fmt"
	"time"

	bookingRepo "savipets/database/repository/booking"
	"savipets/services/reschedule"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const conflictCacheTTL = 30 * time.Second

// SitterScheduleChecker answers overlap queries against the booking store,
// with a short redis cache so repeated validation of the same proposal does
// not hammer the database.
type SitterScheduleChecker struct {
	Bookings bookingRepo.BookingRepository
	Cache    *redis.Client
	Logger   *zap.Logger
}

// Checker builds the injectable conflict check for one proposal, excluding the
// booking being moved so it never conflicts with itself.
func (c *SitterScheduleChecker) Checker(ctx context.Context, excludeBookingID string) reschedule.ConflictCheck {
	return func(sitterID string, start, end time.Time) bool {
		key := fmt.Sprintf("sitter-window:%s:%d:%d:%s", sitterID, start.Unix(), end.Unix(), excludeBookingID)
		if c.Cache != nil {
			if cached, err := c.Cache.Get(ctx, key).Result(); err == nil {
				return cached == "1"
			}
		}

		bookings, err := c.Bookings.ListSitterBookingsInWindow(ctx, sitterID, start, end)
		if err != nil {
			// An unreachable store must not silently hard-deny every proposal;
			// log and let the write path catch real double-booking.
			c.Logger.Warn("sitter conflict lookup failed",
				zap.String("sitterId", sitterID), zap.Error(err))
			return false
		}

		conflict := false
		for _, b := range bookings {
			if b.ID != excludeBookingID {
				conflict = true
				break
			}
		}

		if c.Cache != nil {
			val := "0"
			if conflict {
				val = "1"
			}
			if err := c.Cache.Set(ctx, key, val, conflictCacheTTL).Err(); err != nil {
				c.Logger.Debug("failed to cache conflict lookup", zap.Error(err))
			}
		}
		return conflict
	}
}
