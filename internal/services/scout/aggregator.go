package scout

import (
	"sort"
	"strings"

	"github.com/bobmcallan/finaos/internal/models"
)

// aggregateLots consolidates holding lots into one position per canonical
// symbol, summing across lots and across accounts. Cost basis is always
// per-share; a lot contributes quantity * costBasisPerShare to the total.
// Lots with rejected tickers are skipped, collected once each for report
// visibility, and never fail the run.
func aggregateLots(norm *Normalizer, lots []*models.HoldingLot) (map[string]*models.CanonicalPosition, []string) {
	positions := make(map[string]*models.CanonicalPosition)
	skippedSet := make(map[string]struct{})

	for _, lot := range lots {
		symbol, ok := norm.Normalize(lot.RawTicker)
		if !ok {
			name := strings.ToUpper(strings.TrimSpace(lot.RawTicker))
			if name == "" {
				name = "(blank)"
			}
			skippedSet[name] = struct{}{}
			continue
		}

		pos, exists := positions[symbol]
		if !exists {
			pos = &models.CanonicalPosition{
				Symbol:  symbol,
				Display: norm.Display(symbol),
			}
			positions[symbol] = pos
		}

		pos.TotalQuantity += lot.Quantity
		pos.TotalCostBasis += lot.TotalCost()
	}

	skipped := make([]string, 0, len(skippedSet))
	for name := range skippedSet {
		skipped = append(skipped, name)
	}
	sort.Strings(skipped)

	return positions, skipped
}
