package scout

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bobmcallan/finaos/internal/models"
)

func review(amount, percent *float64) *models.PositionReview {
	return &models.PositionReview{
		Symbol:          "TEST",
		GainLossAmount:  amount,
		GainLossPercent: percent,
	}
}

func fp(v float64) *float64 { return &v }

func TestPolicyClassify(t *testing.T) {
	policy := Policy{LossPercentThreshold: -0.05, MinHarvestAmount: 100}

	tests := []struct {
		name   string
		review *models.PositionReview
		want   models.PositionStatus
	}{
		{"no data", review(nil, nil), models.StatusDataUnavailable},
		{"gain", review(fp(250), fp(0.10)), models.StatusHealthy},
		{"breakeven", review(fp(0), fp(0)), models.StatusHealthy},
		{"small loss", review(fp(-40), fp(-0.02)), models.StatusWatch},
		{"deep percent but shallow amount", review(fp(-50), fp(-0.30)), models.StatusWatch},
		{"big amount but shallow percent", review(fp(-500), fp(-0.01)), models.StatusWatch},
		{"both thresholds met", review(fp(-200), fp(-0.20)), models.StatusHarvest},
		{"exact boundary", review(fp(-100), fp(-0.05)), models.StatusHarvest},
		{"loss with unknown basis", review(fp(-5000), nil), models.StatusWatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, policy.Classify(tt.review))
		})
	}
}

func TestPolicyClassify_ThresholdsFromConfig(t *testing.T) {
	policy := NewPolicy(testScoutConfig())

	// Config defaults: -5% and $100 floor.
	assert.Equal(t, models.StatusHarvest, policy.Classify(review(fp(-150), fp(-0.08))))
	assert.Equal(t, models.StatusWatch, policy.Classify(review(fp(-150), fp(-0.03))))
}
