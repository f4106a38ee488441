package scout

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bobmcallan/finaos/internal/common"
)

func testScoutConfig() common.ScoutConfig {
	return common.ScoutConfig{
		LossPercentThreshold: -0.05,
		MinHarvestAmount:     100,
		MaxTickerLength:      6,
		SymbolAliases: map[string]string{
			"BTC": "BTC-USD",
			"ETH": "ETH-USD",
			"LTC": "LTC-USD",
		},
	}
}

func TestNormalizer_TrimAndUppercase(t *testing.T) {
	n := NewNormalizer(testScoutConfig())

	symbol, ok := n.Normalize("  aapl ")
	assert.True(t, ok)
	assert.Equal(t, "AAPL", symbol)
}

func TestNormalizer_RejectsEmptyAndUnknown(t *testing.T) {
	n := NewNormalizer(testScoutConfig())

	for _, raw := range []string{"", "   ", "UNKNOWN", "unknown"} {
		_, ok := n.Normalize(raw)
		assert.False(t, ok, "expected %q to be rejected", raw)
	}
}

func TestNormalizer_CryptoAlias(t *testing.T) {
	n := NewNormalizer(testScoutConfig())

	symbol, ok := n.Normalize("btc")
	assert.True(t, ok)
	assert.Equal(t, "BTC-USD", symbol)

	assert.Equal(t, "BTC", n.Display("BTC-USD"))
}

func TestNormalizer_Idempotent(t *testing.T) {
	n := NewNormalizer(testScoutConfig())

	// A canonical alias target passes through unchanged even though it
	// exceeds the plain-ticker length limit.
	symbol, ok := n.Normalize("BTC-USD")
	assert.True(t, ok)
	assert.Equal(t, "BTC-USD", symbol)

	// Plain tickers are their own canonical form.
	symbol, ok = n.Normalize("AAPL")
	assert.True(t, ok)
	again, ok2 := n.Normalize(symbol)
	assert.True(t, ok2)
	assert.Equal(t, symbol, again)
}

func TestNormalizer_RejectsLongSymbols(t *testing.T) {
	n := NewNormalizer(testScoutConfig())

	_, ok := n.Normalize("TOOLONGTICKER")
	assert.False(t, ok)

	// Exactly at the limit is fine.
	symbol, ok := n.Normalize("ABCDEF")
	assert.True(t, ok)
	assert.Equal(t, "ABCDEF", symbol)
}

func TestNormalizer_RejectsDigitRuns(t *testing.T) {
	n := NewNormalizer(testScoutConfig())

	_, ok := n.Normalize("OPT123456")
	assert.False(t, ok)

	// Two digits don't trip the heuristic.
	symbol, ok := n.Normalize("BF12")
	assert.True(t, ok)
	assert.Equal(t, "BF12", symbol)
}

func TestNormalizer_DisplayPassthrough(t *testing.T) {
	n := NewNormalizer(testScoutConfig())

	assert.Equal(t, "AAPL", n.Display("AAPL"))
	assert.Equal(t, "ETH", n.Display("ETH-USD"))
}
