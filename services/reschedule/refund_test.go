package reschedule

import (
	"testing"

	"savipets/config"
	"savipets/models"
)

func paidBooking(price string) models.Booking {
	return models.Booking{
		ID:            "booking-1",
		Price:         price,
		Currency:      "USD",
		Status:        models.BookingApproved,
		PaymentStatus: models.PaymentConfirmed,
	}
}

func TestComputeRefundTiers(t *testing.T) {
	policy := config.DefaultPolicy()
	b := paidBooking("80.00")

	tests := []struct {
		hours        float64
		wantEligible bool
		wantMinor    int64
	}{
		{100, true, 8000},
		{48, true, 8000},
		{47.9, true, 6000},
		{24, true, 6000},
		{23.9, true, 4000},
		{12, true, 4000},
		{11.9, true, 2000},
		{2, true, 2000},
		{1.9, false, 0},
		{0, false, 0},
		{-3, false, 0},
	}
	for _, tt := range tests {
		eligible, minor := ComputeRefund(b, policy, tt.hours)
		if eligible != tt.wantEligible || minor != tt.wantMinor {
			t.Errorf("hours=%v: got (%v, %d), want (%v, %d)",
				tt.hours, eligible, minor, tt.wantEligible, tt.wantMinor)
		}
	}
}

func TestComputeRefundRequiresConfirmedPayment(t *testing.T) {
	policy := config.DefaultPolicy()
	for _, status := range []models.PaymentStatus{models.PaymentPending, models.PaymentRefunded} {
		b := paidBooking("80.00")
		b.PaymentStatus = status
		if eligible, minor := ComputeRefund(b, policy, 100); eligible || minor != 0 {
			t.Errorf("status %s: got (%v, %d), want (false, 0)", status, eligible, minor)
		}
	}
}

func TestComputeRefundMalformedPrice(t *testing.T) {
	policy := config.DefaultPolicy()
	for _, price := range []string{"", "abc", "10.123"} {
		b := paidBooking(price)
		if eligible, minor := ComputeRefund(b, policy, 100); eligible || minor != 0 {
			t.Errorf("price %q: got (%v, %d), want (false, 0)", price, eligible, minor)
		}
	}
}

func TestComputeRefundOddAmountsRoundHalfUp(t *testing.T) {
	policy := config.DefaultPolicy()
	b := paidBooking("33.33")

	// 25% of 3333 minor units is 833.25, rounded half up to 833.
	if _, minor := ComputeRefund(b, policy, 3); minor != 833 {
		t.Errorf("got %d minor units, want 833", minor)
	}
	// 75% of 3333 is 2499.75, rounded to 2500.
	if _, minor := ComputeRefund(b, policy, 30); minor != 2500 {
		t.Errorf("got %d minor units, want 2500", minor)
	}
}
