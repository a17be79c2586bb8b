package reschedule

import (
	"savipets/config"
	"savipets/models"
	"savipets/utils"
)

// ComputeRefund returns refund eligibility and the amount in minor units for a
// cancellation made hoursUntilVisit before the scheduled time. Nothing was
// charged unless the payment is confirmed, so eligibility is false regardless
// of timing otherwise. The tier table comes from policy configuration; all
// arithmetic runs on integer minor units.
func ComputeRefund(b models.Booking, policy config.PolicyConfig, hoursUntilVisit float64) (bool, int64) {
	if b.PaymentStatus != models.PaymentConfirmed {
		return false, 0
	}

	percent := policy.TierPercent(hoursUntilVisit)
	if percent <= 0 {
		return false, 0
	}

	priceMinor, err := utils.ParseAmountMinor(b.Price)
	if err != nil {
		// A malformed stored price refunds nothing rather than guessing.
		return false, 0
	}

	return true, utils.ApplyPercent(priceMinor, percent)
}
