package scout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/finaos/internal/models"
)

func lot(account, ticker string, qty, basisPerShare float64) *models.HoldingLot {
	return &models.HoldingLot{
		AccountID:         account,
		RawTicker:         ticker,
		Quantity:          qty,
		CostBasisPerShare: basisPerShare,
		Currency:          "USD",
	}
}

func TestAggregateLots_SumsAcrossAccounts(t *testing.T) {
	n := NewNormalizer(testScoutConfig())

	lots := []*models.HoldingLot{
		lot("acc-1", "AAPL", 10, 150),
		lot("acc-2", "AAPL", 5, 140),
	}

	positions, skipped := aggregateLots(n, lots)
	require.Len(t, positions, 1)
	assert.Empty(t, skipped)

	pos := positions["AAPL"]
	require.NotNil(t, pos)
	assert.InDelta(t, 15.0, pos.TotalQuantity, 0.0001)
	assert.InDelta(t, 10*150+5*140.0, pos.TotalCostBasis, 0.0001)
}

func TestAggregateLots_OrderInvariant(t *testing.T) {
	n := NewNormalizer(testScoutConfig())

	forward := []*models.HoldingLot{
		lot("a", "VTI", 3, 210),
		lot("a", "VTI", 2, 195),
		lot("b", "VTI", 1.5, 220),
	}
	reversed := []*models.HoldingLot{forward[2], forward[1], forward[0]}

	p1, _ := aggregateLots(n, forward)
	p2, _ := aggregateLots(n, reversed)

	require.Contains(t, p1, "VTI")
	require.Contains(t, p2, "VTI")
	assert.InDelta(t, p1["VTI"].TotalQuantity, p2["VTI"].TotalQuantity, 0.0001)
	assert.InDelta(t, p1["VTI"].TotalCostBasis, p2["VTI"].TotalCostBasis, 0.0001)
}

func TestAggregateLots_CryptoAliasConsolidation(t *testing.T) {
	n := NewNormalizer(testScoutConfig())

	lots := []*models.HoldingLot{
		lot("acc-1", "BTC", 1, 30000),
		lot("acc-2", "BTC", 0.5, 28000),
	}

	positions, _ := aggregateLots(n, lots)
	require.Len(t, positions, 1)

	pos := positions["BTC-USD"]
	require.NotNil(t, pos, "expected canonical key BTC-USD")
	assert.Equal(t, "BTC", pos.Display)
	assert.InDelta(t, 1.5, pos.TotalQuantity, 0.0001)
	assert.InDelta(t, 44000.0, pos.TotalCostBasis, 0.0001)
}

func TestAggregateLots_SkipsRejectedTickers(t *testing.T) {
	n := NewNormalizer(testScoutConfig())

	lots := []*models.HoldingLot{
		lot("acc-1", "OPT123456", 100, 1.50),
		lot("acc-1", "UNKNOWN", 5, 10),
		lot("acc-1", "  ", 1, 1),
		lot("acc-1", "SPY", 2, 400),
	}

	positions, skipped := aggregateLots(n, lots)
	require.Len(t, positions, 1)
	assert.NotNil(t, positions["SPY"])

	// Rejected tickers are visible but create no positions.
	assert.Equal(t, []string{"(blank)", "OPT123456", "UNKNOWN"}, skipped)
}

func TestAggregateLots_SkippedDeduplicated(t *testing.T) {
	n := NewNormalizer(testScoutConfig())

	lots := []*models.HoldingLot{
		lot("acc-1", "UNKNOWN", 1, 1),
		lot("acc-2", "UNKNOWN", 2, 2),
	}

	positions, skipped := aggregateLots(n, lots)
	assert.Empty(t, positions)
	assert.Equal(t, []string{"UNKNOWN"}, skipped)
}
