// Package scout implements the portfolio consolidation and tax-loss
// harvest decision engine: it consolidates stored holding lots into
// per-asset positions, resolves live prices, and classifies each position
// as healthy, watch, or harvest.
package scout

import (
	"regexp"
	"strings"

	"github.com/bobmcallan/finaos/internal/common"
)

// digitRun matches 3+ consecutive digits, the signature of internal
// option/identifier codes rather than tradable tickers.
var digitRun = regexp.MustCompile(`[0-9]{3,}`)

// Normalizer maps raw ticker strings onto canonical lookup symbols and
// filters non-equity noise. Pure function of its input and configuration.
type Normalizer struct {
	aliases map[string]string // raw -> lookup (BTC -> BTC-USD)
	reverse map[string]string // lookup -> raw
	maxLen  int
}

// NewNormalizer builds a normalizer from the scout configuration.
func NewNormalizer(cfg common.ScoutConfig) *Normalizer {
	n := &Normalizer{
		aliases: make(map[string]string, len(cfg.SymbolAliases)),
		reverse: make(map[string]string, len(cfg.SymbolAliases)),
		maxLen:  cfg.MaxTickerLength,
	}
	if n.maxLen <= 0 {
		n.maxLen = 6
	}
	for raw, lookup := range cfg.SymbolAliases {
		raw = strings.ToUpper(strings.TrimSpace(raw))
		lookup = strings.ToUpper(strings.TrimSpace(lookup))
		if raw == "" || lookup == "" {
			continue
		}
		n.aliases[raw] = lookup
		n.reverse[lookup] = raw
	}
	return n
}

// Normalize returns the canonical lookup symbol for a raw ticker, or
// ok=false when the ticker is rejected. Rejection is per-lot and never
// fatal. Normalizing an already-canonical symbol returns it unchanged.
func (n *Normalizer) Normalize(raw string) (symbol string, ok bool) {
	symbol = strings.ToUpper(strings.TrimSpace(raw))

	if symbol == "" || symbol == "UNKNOWN" {
		return "", false
	}

	if lookup, ok := n.aliases[symbol]; ok {
		return lookup, true
	}
	if _, ok := n.reverse[symbol]; ok {
		// Already a canonical alias target (e.g. BTC-USD).
		return symbol, true
	}

	if len(symbol) > n.maxLen {
		return "", false
	}
	if digitRun.MatchString(symbol) {
		return "", false
	}

	return symbol, true
}

// Display returns the portfolio-facing ticker for a canonical symbol,
// reversing the alias mapping for report output.
func (n *Normalizer) Display(symbol string) string {
	if raw, ok := n.reverse[symbol]; ok {
		return raw
	}
	return symbol
}
