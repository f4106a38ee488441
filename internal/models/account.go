package models

import "time"

// Account is a linked brokerage or bank account. Name and AccessToken are
// plaintext in memory only; the vault encrypts them at rest.
type Account struct {
	AccountID   string    `json:"account_id" badgerhold:"key"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Subtype     string    `json:"subtype"`
	AccessToken string    `json:"-"`
	LastSynced  time.Time `json:"last_synced"`
}

// IsInvestment reports whether the account can carry holdings.
func (a *Account) IsInvestment() bool {
	return a.Type == "investment" || a.Type == "brokerage"
}

// AuditEntry is one append-only audit log record.
type AuditEntry struct {
	ID        string    `json:"id" badgerhold:"key"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail"`
}

// BrokerageHolding is one raw holding lot as returned by the brokerage
// aggregator, before normalization. A security without a ticker symbol
// comes through as "UNKNOWN" and is dropped downstream.
type BrokerageHolding struct {
	AccountID         string  `json:"account_id"`
	Ticker            string  `json:"ticker"`
	Quantity          float64 `json:"quantity"`
	CostBasisPerShare float64 `json:"cost_basis_per_share"`
	Currency          string  `json:"currency"`
}

// EODBar is one end-of-day price bar.
type EODBar struct {
	Date     time.Time `json:"date"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	AdjClose float64   `json:"adj_close"`
	Volume   int64     `json:"volume"`
}

// EODSeries is a daily price series, most recent bar first.
type EODSeries struct {
	Ticker string   `json:"ticker"`
	Data   []EODBar `json:"data"`
}
