// Package marketdata provides a client for the EODHD market data API
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/finaos/internal/common"
	"github.com/bobmcallan/finaos/internal/interfaces"
	"github.com/bobmcallan/finaos/internal/models"
)

const (
	DefaultBaseURL   = "https://eodhd.com/api"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 10 // requests per second
)

// naFloat handles JSON price values that may be a number, a numeric
// string, or the literal "NA" the API uses for unpriceable symbols.
type naFloat struct {
	Value float64
	Valid bool
}

func (f *naFloat) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		f.Value = num
		f.Valid = true
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" || s == "NA" || s == "N/A" {
			f.Valid = false
			return nil
		}
		num, err := strconv.ParseFloat(s, 64)
		if err != nil {
			f.Valid = false
			return nil
		}
		f.Value = num
		f.Valid = true
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into float64", string(data))
}

// Client implements the MarketDataClient interface
type Client struct {
	baseURL    string
	apiKey     string
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

// NewClient creates a new market data client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
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
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("market data API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_token", c.apiKey)
	params.Set("fmt", "json")

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("url", c.baseURL+path).Msg("Market data API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// realtimeQuote represents one entry of the real-time batch response.
// The API reports "NA" for close on symbols it cannot price live, in
// which case previousClose is the most recent usable point.
type realtimeQuote struct {
	Code          string  `json:"code"`
	Timestamp     int64   `json:"timestamp"`
	Close         naFloat `json:"close"`
	PreviousClose naFloat `json:"previousClose"`
}

// price returns the most recent non-missing value for the quote.
func (q realtimeQuote) price() (float64, bool) {
	if q.Close.Valid {
		return q.Close.Value, true
	}
	if q.PreviousClose.Valid {
		return q.PreviousClose.Value, true
	}
	return 0, false
}

// GetLastPrices resolves last-known prices for all symbols in one batch
// request. Symbols missing from the response, or priced "NA" with no
// previous close, are simply absent from the result.
func (c *Client) GetLastPrices(ctx context.Context, symbols []string) (map[string]float64, error) {
	prices := make(map[string]float64, len(symbols))
	if len(symbols) == 0 {
		return prices, nil
	}

	// One request for the whole batch: first symbol in the path, the
	// rest on the "s" parameter.
	path := fmt.Sprintf("/real-time/%s", url.PathEscape(symbols[0]))
	params := url.Values{}
	if len(symbols) > 1 {
		params.Set("s", strings.Join(symbols[1:], ","))
	}

	var quotes []realtimeQuote
	if len(symbols) == 1 {
		// A single-symbol request returns a bare object, not an array.
		var single realtimeQuote
		if err := c.get(ctx, path, params, &single); err != nil {
			return nil, err
		}
		quotes = []realtimeQuote{single}
	} else {
		if err := c.get(ctx, path, params, &quotes); err != nil {
			return nil, err
		}
	}

	requested := make(map[string]string, len(symbols))
	for _, s := range symbols {
		requested[strings.ToUpper(s)] = s
	}

	for _, q := range quotes {
		value, ok := q.price()
		if !ok {
			continue
		}
		symbol, ok := matchSymbol(requested, q.Code)
		if !ok {
			c.logger.Debug().Str("code", q.Code).Msg("Unrequested code in batch response")
			continue
		}
		prices[symbol] = value
	}

	return prices, nil
}

// matchSymbol maps a response code back onto a requested symbol. The API
// echoes codes with an exchange suffix (AAPL.US) even when the request
// omitted one.
func matchSymbol(requested map[string]string, code string) (string, bool) {
	code = strings.ToUpper(code)
	if s, ok := requested[code]; ok {
		return s, true
	}
	if i := strings.LastIndex(code, "."); i > 0 {
		if s, ok := requested[code[:i]]; ok {
			return s, true
		}
	}
	return "", false
}

// GetEOD retrieves end-of-day price data, most recent bar first
func (c *Client) GetEOD(ctx context.Context, ticker string, opts ...interfaces.EODOption) (*models.EODSeries, error) {
	params := &interfaces.EODParams{
		Period: "d",
		Order:  "d", // descending (most recent first)
	}

	for _, opt := range opts {
		opt(params)
	}

	urlParams := url.Values{}
	urlParams.Set("period", params.Period)
	urlParams.Set("order", params.Order)

	if !params.From.IsZero() {
		urlParams.Set("from", params.From.Format("2006-01-02"))
	}
	if !params.To.IsZero() {
		urlParams.Set("to", params.To.Format("2006-01-02"))
	}

	path := fmt.Sprintf("/eod/%s", url.PathEscape(ticker))

	var bars []eodBarResponse
	if err := c.get(ctx, path, urlParams, &bars); err != nil {
		return nil, err
	}

	series := &models.EODSeries{
		Ticker: ticker,
		Data:   make([]models.EODBar, len(bars)),
	}

	for i, bar := range bars {
		date, _ := time.Parse("2006-01-02", bar.Date)
		series.Data[i] = models.EODBar{
			Date:     date,
			Open:     bar.Open,
			High:     bar.High,
			Low:      bar.Low,
			Close:    bar.Close,
			AdjClose: bar.AdjustedClose,
			Volume:   bar.Volume,
		}
	}

	return series, nil
}

// eodBarResponse represents the API response for EOD data
type eodBarResponse struct {
	Date          string  `json:"date"`
	Open          float64 `json:"open"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Close         float64 `json:"close"`
	AdjustedClose float64 `json:"adjusted_close"`
	Volume        int64   `json:"volume"`
}

// Ensure Client implements MarketDataClient
var _ interfaces.MarketDataClient = (*Client)(nil)
