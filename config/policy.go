package config

import (
	"log"
	"sort"

	"github.com/spf13/viper"
)

// RefundTier maps a notice window to a refund percentage. A cancellation made at
// least MinHoursBefore hours before the visit refunds Percent of the booking price.
type RefundTier struct {
	MinHoursBefore float64 `mapstructure:"min_hours_before"`
	Percent        int64   `mapstructure:"percent"`
}

// PolicyConfig holds the business rules governing reschedules and cancellations.
type PolicyConfig struct {
	MinimumNoticeHours        float64      `mapstructure:"MINIMUM_NOTICE_HOURS"`
	BusinessHoursStart        int          `mapstructure:"BUSINESS_HOURS_START"`
	BusinessHoursEnd          int          `mapstructure:"BUSINESS_HOURS_END"`
	MaxReschedulesPerBooking  int          `mapstructure:"MAX_RESCHEDULES_PER_BOOKING"`
	AutoApproveThresholdHours float64      `mapstructure:"AUTO_APPROVE_THRESHOLD_HOURS"`
	RefundTiers               []RefundTier `mapstructure:"refund_tiers"`
}

var Policy PolicyConfig

// DefaultPolicy returns the stock rule set. Exposed so tests and pure validation
// code can run without loading viper.
func DefaultPolicy() PolicyConfig {
	return PolicyConfig{
		MinimumNoticeHours:        2,
		BusinessHoursStart:        8,
		BusinessHoursEnd:          20,
		MaxReschedulesPerBooking:  3,
		AutoApproveThresholdHours: 24,
		RefundTiers: []RefundTier{
			{MinHoursBefore: 48, Percent: 100},
			{MinHoursBefore: 24, Percent: 75},
			{MinHoursBefore: 12, Percent: 50},
			{MinHoursBefore: 2, Percent: 25},
			{MinHoursBefore: 0, Percent: 0},
		},
	}
}

func loadPolicy() {
	viper.SetDefault("MINIMUM_NOTICE_HOURS", 2)
	viper.SetDefault("BUSINESS_HOURS_START", 8)
	viper.SetDefault("BUSINESS_HOURS_END", 20)
	viper.SetDefault("MAX_RESCHEDULES_PER_BOOKING", 3)
	viper.SetDefault("AUTO_APPROVE_THRESHOLD_HOURS", 24)

	Policy = DefaultPolicy()
	if err := viper.Unmarshal(&Policy); err != nil {
		log.Fatalf("Failed to load policy config: %v", err)
	}
	if viper.IsSet("refund_tiers") {
		var tiers []RefundTier
		if err := viper.UnmarshalKey("refund_tiers", &tiers); err != nil {
			log.Fatalf("Failed to load refund tiers: %v", err)
		}
		if len(tiers) > 0 {
			Policy.RefundTiers = tiers
		}
	}
	sort.Slice(Policy.RefundTiers, func(i, j int) bool {
		return Policy.RefundTiers[i].MinHoursBefore > Policy.RefundTiers[j].MinHoursBefore
	})
}

// TierPercent returns the refund percentage for a cancellation made hoursBefore
// hours ahead of the scheduled time. Tiers are checked from the widest notice
// window down; anything past the visit start refunds nothing.
func (p PolicyConfig) TierPercent(hoursBefore float64) int64 {
	if hoursBefore < 0 {
		return 0
	}
	for _, t := range p.RefundTiers {
		if hoursBefore >= t.MinHoursBefore {
			return t.Percent
		}
	}
	return 0
}
