// Package models defines the data structures for Fina.os
package models

import "time"

// HoldingLot is one stored position record as synced from a brokerage
// account. Lots are immutable once written; a sync replaces an account's
// full snapshot rather than merging increments.
type HoldingLot struct {
	ID                string    `json:"id" badgerhold:"key"`
	AccountID         string    `json:"account_id"`
	RawTicker         string    `json:"raw_ticker"`
	Quantity          float64   `json:"quantity"`
	CostBasisPerShare float64   `json:"cost_basis_per_share"`
	Currency          string    `json:"currency"`
	SyncedAt          time.Time `json:"synced_at"`
}

// TotalCost returns the lot's contribution to a position's cost basis.
// Cost basis is always per-share; the total is derived by multiplying.
func (l *HoldingLot) TotalCost() float64 {
	return l.Quantity * l.CostBasisPerShare
}

// CanonicalPosition is the consolidated view of one asset across all
// accounts, keyed by the canonical lookup symbol.
type CanonicalPosition struct {
	// Symbol is the canonical lookup symbol used for price queries
	// (e.g. BTC-USD).
	Symbol string `json:"symbol"`
	// Display is the portfolio-facing ticker (e.g. BTC), reverse-mapped
	// from the lookup symbol for reporting.
	Display        string  `json:"display"`
	TotalQuantity  float64 `json:"total_quantity"`
	TotalCostBasis float64 `json:"total_cost_basis"`
}

// BasisKnown reports whether the position carries a usable cost basis.
// A zero basis means percentage gain/loss cannot be computed.
func (p *CanonicalPosition) BasisKnown() bool {
	return p.TotalCostBasis > 0
}

// PriceQuote holds the resolved live price for a canonical symbol.
// Valid is false when the lookup failed or returned no numeric value.
type PriceQuote struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
	Valid  bool    `json:"valid"`
}
