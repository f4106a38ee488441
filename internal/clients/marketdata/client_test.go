package marketdata

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient("test-key", WithBaseURL(server.URL))
}

func TestGetLastPrices_Batch(t *testing.T) {
	var requests []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("api_token"))
		assert.Equal(t, "json", r.URL.Query().Get("fmt"))
		assert.Equal(t, "/real-time/AAPL", r.URL.Path)
		assert.Equal(t, "MSFT,VTI", r.URL.Query().Get("s"))

		json.NewEncoder(w).Encode([]map[string]interface{}{
			{"code": "AAPL.US", "close": 182.5},
			{"code": "MSFT.US", "close": 410.25},
			{"code": "VTI.US", "close": 255.0},
		})
	})

	prices, err := client.GetLastPrices(context.Background(), []string{"AAPL", "MSFT", "VTI"})
	require.NoError(t, err)

	// The whole batch goes out in one request.
	assert.Len(t, requests, 1)
	assert.Equal(t, map[string]float64{
		"AAPL": 182.5,
		"MSFT": 410.25,
		"VTI":  255.0,
	}, prices)
}

func TestGetLastPrices_NAFallsBackToPreviousClose(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]interface{}{
			{"code": "AAPL.US", "close": "NA", "previousClose": 181.0},
			{"code": "DEAD.US", "close": "NA", "previousClose": "NA"},
		})
	})

	prices, err := client.GetLastPrices(context.Background(), []string{"AAPL", "DEAD"})
	require.NoError(t, err)

	assert.Equal(t, map[string]float64{"AAPL": 181.0}, prices)
}

func TestGetLastPrices_SingleSymbolBareObject(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.Query().Get("s"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"code": "BTC-USD.CC", "close": "64123.55",
		})
	})

	prices, err := client.GetLastPrices(context.Background(), []string{"BTC-USD"})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"BTC-USD": 64123.55}, prices)
}

func TestGetLastPrices_EmptyRequest(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for an empty symbol list")
	})

	prices, err := client.GetLastPrices(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, prices)
}

func TestGetLastPrices_APIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte("subscription expired"))
	})

	_, err := client.GetLastPrices(context.Background(), []string{"AAPL", "VTI"})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusPaymentRequired, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "subscription expired")
}

func TestMatchSymbol(t *testing.T) {
	requested := map[string]string{"AAPL": "AAPL", "BTC-USD": "BTC-USD"}

	s, ok := matchSymbol(requested, "AAPL")
	assert.True(t, ok)
	assert.Equal(t, "AAPL", s)

	s, ok = matchSymbol(requested, "aapl.us")
	assert.True(t, ok)
	assert.Equal(t, "AAPL", s)

	s, ok = matchSymbol(requested, "BTC-USD.CC")
	assert.True(t, ok)
	assert.Equal(t, "BTC-USD", s)

	_, ok = matchSymbol(requested, "TSLA.US")
	assert.False(t, ok)
}

func TestNaFloat(t *testing.T) {
	var q realtimeQuote
	require.NoError(t, json.Unmarshal([]byte(`{"code":"X","close":12.5,"previousClose":"NA"}`), &q))
	assert.True(t, q.Close.Valid)
	assert.Equal(t, 12.5, q.Close.Value)
	assert.False(t, q.PreviousClose.Valid)

	require.NoError(t, json.Unmarshal([]byte(`{"close":"9.75"}`), &q))
	assert.True(t, q.Close.Valid)
	assert.Equal(t, 9.75, q.Close.Value)
}

func TestGetEOD(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/eod/AAPL", r.URL.Path)
		assert.Equal(t, "d", r.URL.Query().Get("period"))
		assert.Equal(t, "d", r.URL.Query().Get("order"))

		json.NewEncoder(w).Encode([]map[string]interface{}{
			{"date": "2025-08-29", "open": 180.0, "high": 184.0, "low": 179.5, "close": 182.5, "adjusted_close": 182.5, "volume": 51234000},
			{"date": "2025-08-28", "open": 178.0, "high": 181.0, "low": 177.0, "close": 180.0, "adjusted_close": 180.0, "volume": 48000000},
		})
	})

	series, err := client.GetEOD(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", series.Ticker)
	require.Len(t, series.Data, 2)
	assert.Equal(t, 182.5, series.Data[0].Close)
	assert.Equal(t, "2025-08-29", series.Data[0].Date.Format("2006-01-02"))
	assert.Equal(t, int64(48000000), series.Data[1].Volume)
}
