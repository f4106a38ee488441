// Package brokerage provides a client for the Plaid investments API,
// the holdings source behind linked accounts.
package brokerage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/finaos/internal/common"
	"github.com/bobmcallan/finaos/internal/interfaces"
	"github.com/bobmcallan/finaos/internal/models"
)

const (
	DefaultBaseURL   = "https://sandbox.plaid.com"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second
)

// Client implements the BrokerageClient interface
type Client struct {
	baseURL    string
	clientID   string
	secret     string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new brokerage client
func NewClient(clientID, secret string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:  DefaultBaseURL,
		clientID: clientID,
		secret:   secret,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("brokerage API error: %s (%s, status: %d)", e.Message, e.Code, e.StatusCode)
}

type errorResponse struct {
	ErrorCode    string `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

// post performs a rate-limited POST request with a JSON body.
func (c *Client) post(ctx context.Context, path string, body, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug().Str("path", path).Msg("Brokerage API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		var apiErr errorResponse
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.ErrorCode == "PRODUCTS_NOT_SUPPORTED" {
			return interfaces.ErrUnsupportedAccount
		}
		return &APIError{
			StatusCode: resp.StatusCode,
			Code:       apiErr.ErrorCode,
			Message:    string(raw),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

type holdingsRequest struct {
	ClientID    string `json:"client_id"`
	Secret      string `json:"secret"`
	AccessToken string `json:"access_token"`
}

type holdingsResponse struct {
	Holdings []struct {
		AccountID       string  `json:"account_id"`
		SecurityID      string  `json:"security_id"`
		Quantity        float64 `json:"quantity"`
		CostBasis       float64 `json:"cost_basis"`
		IsoCurrencyCode string  `json:"iso_currency_code"`
	} `json:"holdings"`
	Securities []struct {
		SecurityID   string `json:"security_id"`
		TickerSymbol string `json:"ticker_symbol"`
	} `json:"securities"`
}

// GetHoldings retrieves investment holdings for one access token. The API
// separates holdings (counts) from securities (tickers); they are joined
// here. Securities without a ticker come through as "UNKNOWN" and are
// rejected downstream by the normalizer.
//
// The API reports cost_basis as the TOTAL cost of the lot; it is divided
// by quantity here so that everything past this boundary carries the one
// per-share convention.
func (c *Client) GetHoldings(ctx context.Context, accessToken string) ([]*models.BrokerageHolding, error) {
	req := holdingsRequest{
		ClientID:    c.clientID,
		Secret:      c.secret,
		AccessToken: accessToken,
	}

	var resp holdingsResponse
	if err := c.post(ctx, "/investments/holdings/get", req, &resp); err != nil {
		return nil, err
	}

	tickers := make(map[string]string, len(resp.Securities))
	for _, sec := range resp.Securities {
		tickers[sec.SecurityID] = sec.TickerSymbol
	}

	holdings := make([]*models.BrokerageHolding, 0, len(resp.Holdings))
	for _, h := range resp.Holdings {
		ticker, ok := tickers[h.SecurityID]
		if !ok || ticker == "" {
			ticker = "UNKNOWN"
		}

		perShare := 0.0
		if h.Quantity > 0 {
			perShare = h.CostBasis / h.Quantity
		}

		currency := h.IsoCurrencyCode
		if currency == "" {
			currency = "USD"
		}

		holdings = append(holdings, &models.BrokerageHolding{
			AccountID:         h.AccountID,
			Ticker:            ticker,
			Quantity:          h.Quantity,
			CostBasisPerShare: perShare,
			Currency:          currency,
		})
	}

	return holdings, nil
}

// Ensure Client implements BrokerageClient
var _ interfaces.BrokerageClient = (*Client)(nil)
