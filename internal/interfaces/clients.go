// Package interfaces defines service contracts for Fina.os
package interfaces

import (
	"context"
	"errors"
	"time"

	"github.com/bobmcallan/finaos/internal/models"
)

// MarketDataClient provides access to the market data API
type MarketDataClient interface {
	// GetLastPrices resolves last-known prices for a batch of lookup
	// symbols in a single request. Symbols the service cannot price are
	// absent from the returned map; a total fetch failure returns an error.
	GetLastPrices(ctx context.Context, symbols []string) (map[string]float64, error)

	// GetEOD retrieves end-of-day price data, most recent bar first
	GetEOD(ctx context.Context, ticker string, opts ...EODOption) (*models.EODSeries, error)
}

// EODOption configures EOD data requests
type EODOption func(*EODParams)

// EODParams holds EOD query parameters
type EODParams struct {
	From   time.Time
	To     time.Time
	Period string // d=daily, w=weekly, m=monthly
	Order  string // a=ascending, d=descending
}

// WithDateRange sets the date range for EOD query
func WithDateRange(from, to time.Time) EODOption {
	return func(p *EODParams) {
		p.From = from
		p.To = to
	}
}

// WithPeriod sets the period for EOD query
func WithPeriod(period string) EODOption {
	return func(p *EODParams) {
		p.Period = period
	}
}

// AdvisoryClient provides proxy-asset suggestions for harvest candidates.
// The returned text is opaque narrative: it is logged and reported
// verbatim, never parsed or validated.
type AdvisoryClient interface {
	SuggestProxy(ctx context.Context, ticker string) (string, error)
}

// ErrUnsupportedAccount is returned by BrokerageClient implementations
// when the linked account has no investments product (e.g. a plain
// checking account). Callers skip such accounts quietly.
var ErrUnsupportedAccount = errors.New("account does not support investment holdings")

// BrokerageClient provides access to the brokerage aggregator API
type BrokerageClient interface {
	// GetHoldings retrieves the current investment holdings for the
	// account behind the given access token.
	GetHoldings(ctx context.Context, accessToken string) ([]*models.BrokerageHolding, error)
}
