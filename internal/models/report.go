package models

import "time"

// PositionStatus classifies a reviewed position.
type PositionStatus string

const (
	StatusHealthy         PositionStatus = "HEALTHY"
	StatusWatch           PositionStatus = "WATCH"
	StatusHarvest         PositionStatus = "HARVEST"
	StatusDataUnavailable PositionStatus = "DATA_UNAVAILABLE"
)

// PositionReview is the per-position outcome of one scout run. Pointer
// fields are nil when the underlying value is undefined: price and the
// derived amounts when the quote is missing, the percentage additionally
// when the cost basis is unknown. nil is deliberately distinct from zero
// so a basis-unknown position is never mistaken for breakeven.
type PositionReview struct {
	Symbol          string         `json:"symbol"` // display ticker
	LookupSymbol    string         `json:"lookup_symbol"`
	Quantity        float64        `json:"quantity"`
	TotalCostBasis  float64        `json:"total_cost_basis"`
	Price           *float64       `json:"price,omitempty"`
	MarketValue     *float64       `json:"market_value,omitempty"`
	GainLossAmount  *float64       `json:"gain_loss_amount,omitempty"`
	GainLossPercent *float64       `json:"gain_loss_percent,omitempty"`
	Status          PositionStatus `json:"status"`
}

// HarvestCandidate is a position that met both harvest thresholds.
// LossAmount is negative; ProxyAdvice is opaque advisory text recorded
// verbatim, including any embedded error message.
type HarvestCandidate struct {
	Symbol      string  `json:"symbol"`
	LossAmount  float64 `json:"loss_amount"`
	LossPercent float64 `json:"loss_percent"`
	ProxyAdvice string  `json:"proxy_advice"`
}

// HarvestReport is the full outcome of one scout run. Positions are
// sorted by symbol and candidates by loss amount ascending, so two runs
// over identical input render identical reports.
type HarvestReport struct {
	GeneratedAt    time.Time          `json:"generated_at"`
	Positions      []PositionReview   `json:"positions"`
	Candidates     []HarvestCandidate `json:"candidates"`
	SkippedSymbols []string           `json:"skipped_symbols,omitempty"`
}

// SyncResult summarizes one account sync pass.
type SyncResult struct {
	Accounts int      `json:"accounts"`
	Synced   int      `json:"synced"`
	Lots     int      `json:"lots"`
	Failures []string `json:"failures,omitempty"`
}
