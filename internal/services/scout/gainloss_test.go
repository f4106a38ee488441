package scout

import (
	"math"
	"testing"

	"github.com/bobmcallan/finaos/internal/models"
)

func approxEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestComputeReview_UnrealizedLoss(t *testing.T) {
	pos := &models.CanonicalPosition{
		Symbol:         "AAA",
		Display:        "AAA",
		TotalQuantity:  10,
		TotalCostBasis: 1000, // 10 shares at $100
	}
	quote := models.PriceQuote{Symbol: "AAA", Price: 80, Valid: true}

	review := computeReview(pos, quote)

	if review.MarketValue == nil || !approxEqual(*review.MarketValue, 800, 0.01) {
		t.Errorf("marketValue = %v, want 800", review.MarketValue)
	}
	if review.GainLossAmount == nil || !approxEqual(*review.GainLossAmount, -200, 0.01) {
		t.Errorf("gainLossAmount = %v, want -200", review.GainLossAmount)
	}
	if review.GainLossPercent == nil || !approxEqual(*review.GainLossPercent, -0.20, 0.0001) {
		t.Errorf("gainLossPercent = %v, want -0.20", review.GainLossPercent)
	}
}

func TestComputeReview_UnrealizedGain(t *testing.T) {
	pos := &models.CanonicalPosition{
		Symbol:         "VTI",
		Display:        "VTI",
		TotalQuantity:  4,
		TotalCostBasis: 800,
	}
	quote := models.PriceQuote{Symbol: "VTI", Price: 250, Valid: true}

	review := computeReview(pos, quote)

	if review.GainLossAmount == nil || !approxEqual(*review.GainLossAmount, 200, 0.01) {
		t.Errorf("gainLossAmount = %v, want +200", review.GainLossAmount)
	}
	if review.GainLossPercent == nil || !approxEqual(*review.GainLossPercent, 0.25, 0.0001) {
		t.Errorf("gainLossPercent = %v, want 0.25", review.GainLossPercent)
	}
}

func TestComputeReview_MissingQuote(t *testing.T) {
	pos := &models.CanonicalPosition{
		Symbol:         "GHOST",
		Display:        "GHOST",
		TotalQuantity:  1,
		TotalCostBasis: 100,
	}

	review := computeReview(pos, models.PriceQuote{})

	if review.Price != nil || review.MarketValue != nil || review.GainLossAmount != nil || review.GainLossPercent != nil {
		t.Errorf("expected all derived fields nil for missing quote, got %+v", review)
	}
	if review.Quantity != 1 || review.TotalCostBasis != 100 {
		t.Errorf("position fields should survive: %+v", review)
	}
}

func TestComputeReview_ZeroBasisHasAmountButNoPercent(t *testing.T) {
	pos := &models.CanonicalPosition{
		Symbol:         "GIFT",
		Display:        "GIFT",
		TotalQuantity:  5,
		TotalCostBasis: 0,
	}
	quote := models.PriceQuote{Symbol: "GIFT", Price: 10, Valid: true}

	review := computeReview(pos, quote)

	// Basis-unknown: absolute value is reportable, percentage is not.
	if review.GainLossAmount == nil || !approxEqual(*review.GainLossAmount, 50, 0.01) {
		t.Errorf("gainLossAmount = %v, want 50", review.GainLossAmount)
	}
	if review.GainLossPercent != nil {
		t.Errorf("gainLossPercent = %v, want nil for zero basis", *review.GainLossPercent)
	}
}
