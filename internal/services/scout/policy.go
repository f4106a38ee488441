package scout

import (
	"github.com/bobmcallan/finaos/internal/common"
	"github.com/bobmcallan/finaos/internal/models"
)

// Policy classifies reviewed positions using two independent thresholds.
// Both must be met before a position is called a harvest: a deep
// percentage drop on a tiny position, or a large dollar loss that is only
// a sliver of the basis, stays at Watch.
type Policy struct {
	// LossPercentThreshold is a negative fraction (e.g. -0.05 for -5%).
	LossPercentThreshold float64
	// MinHarvestAmount is the positive dollar floor the absolute loss
	// must reach.
	MinHarvestAmount float64
}

// NewPolicy builds a policy from the scout configuration.
func NewPolicy(cfg common.ScoutConfig) Policy {
	return Policy{
		LossPercentThreshold: cfg.LossPercentThreshold,
		MinHarvestAmount:     cfg.MinHarvestAmount,
	}
}

// Classify returns the status for one reviewed position.
func (p Policy) Classify(review *models.PositionReview) models.PositionStatus {
	if review.GainLossAmount == nil {
		return models.StatusDataUnavailable
	}

	amount := *review.GainLossAmount
	if amount >= 0 {
		return models.StatusHealthy
	}

	// A nil percentage (zero basis) can never qualify for harvest.
	if review.GainLossPercent != nil &&
		*review.GainLossPercent <= p.LossPercentThreshold &&
		amount <= -p.MinHarvestAmount {
		return models.StatusHarvest
	}

	return models.StatusWatch
}
