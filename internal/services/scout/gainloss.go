package scout

import "github.com/bobmcallan/finaos/internal/models"

// computeReview computes market value and unrealized gain/loss for one
// consolidated position against its resolved quote. Pure function: no
// I/O, no mutation of the inputs.
//
// When the quote is invalid every derived field stays nil. When the cost
// basis is zero the percentage stays nil while the absolute amount is
// still computed; a basis-unknown position must never look like
// breakeven to the policy layer.
func computeReview(pos *models.CanonicalPosition, quote models.PriceQuote) models.PositionReview {
	review := models.PositionReview{
		Symbol:         pos.Display,
		LookupSymbol:   pos.Symbol,
		Quantity:       pos.TotalQuantity,
		TotalCostBasis: pos.TotalCostBasis,
	}

	if !quote.Valid {
		return review
	}

	price := quote.Price
	marketValue := pos.TotalQuantity * price
	amount := marketValue - pos.TotalCostBasis

	review.Price = &price
	review.MarketValue = &marketValue
	review.GainLossAmount = &amount

	if pos.BasisKnown() {
		pct := amount / pos.TotalCostBasis
		review.GainLossPercent = &pct
	}

	return review
}
