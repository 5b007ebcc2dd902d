package sahmk

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRoundTripper implements http.RoundTripper, capturing the request and
// returning a canned response.
type mockRoundTripper struct {
	LastRequest *http.Request
	Response    *http.Response
	Err         error
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	m.LastRequest = req
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Response, nil
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewBufferString(body)),
	}
}

func newTestClient(rt *mockRoundTripper) *Client {
	return New("shmk_test_abc123", WithTransport(rt))
}

func TestQuote(t *testing.T) {
	rt := &mockRoundTripper{
		Response: jsonResponse(200, `{
			"symbol": "2222",
			"name": "أرامكو السعودية",
			"name_en": "Saudi Aramco",
			"price": 27.55,
			"change": 0.35,
			"change_percent": 1.29,
			"volume": 12034567,
			"bid": 27.50,
			"ask": 27.60,
			"liquidity": {"inflow": 150.5, "outflow": 90.2, "net_value": 60.3}
		}`),
	}
	client := newTestClient(rt)

	quote, err := client.Quote(context.Background(), "2222")
	require.NoError(t, err)

	assert.Equal(t, "https://app.sahmk.sa/api/v1/quote/2222/", rt.LastRequest.URL.String())
	assert.Equal(t, "shmk_test_abc123", rt.LastRequest.Header.Get("X-API-Key"))

	assert.Equal(t, "2222", quote.Symbol)
	assert.Equal(t, "Saudi Aramco", quote.NameEN)
	assert.Equal(t, 27.55, quote.Price)
	assert.Equal(t, 1.29, quote.ChangePercent)
	require.NotNil(t, quote.Liquidity)
	assert.Equal(t, 60.3, quote.Liquidity.NetValue)
}

func TestQuotesBatch(t *testing.T) {
	rt := &mockRoundTripper{
		Response: jsonResponse(200, `{
			"quotes": [
				{"symbol": "2222", "price": 27.55},
				{"symbol": "1120", "price": 88.10}
			],
			"count": 2
		}`),
	}
	client := newTestClient(rt)

	resp, err := client.Quotes(context.Background(), []string{"2222", "1120"})
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/quotes/", rt.LastRequest.URL.Path)
	assert.Equal(t, "2222,1120", rt.LastRequest.URL.Query().Get("symbols"))
	assert.Equal(t, 2, resp.Count)
	require.Len(t, resp.Quotes, 2)
	assert.Equal(t, "1120", resp.Quotes[1].Symbol)
}

func TestQuotesBatchTooManySymbols(t *testing.T) {
	rt := &mockRoundTripper{}
	client := newTestClient(rt)

	symbols := make([]string, MaxBatchSymbols+1)
	for i := range symbols {
		symbols[i] = "2222"
	}

	_, err := client.Quotes(context.Background(), symbols)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTooManySymbols)
	assert.Nil(t, rt.LastRequest, "no request should be made")
}

func TestHistorical(t *testing.T) {
	rt := &mockRoundTripper{
		Response: jsonResponse(200, `{
			"symbol": "2222",
			"interval": "1d",
			"from": "2026-01-01",
			"to": "2026-01-28",
			"count": 1,
			"data": [
				{"date": "2026-01-02", "open": 27.0, "high": 27.8, "low": 26.9, "close": 27.5, "volume": 9000000}
			]
		}`),
	}
	client := newTestClient(rt)

	resp, err := client.Historical(context.Background(), "2222", HistoricalRequest{
		From:     "2026-01-01",
		To:       "2026-01-28",
		Interval: "1d",
	})
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/historical/2222/", rt.LastRequest.URL.Path)
	query := rt.LastRequest.URL.Query()
	assert.Equal(t, "2026-01-01", query.Get("from"))
	assert.Equal(t, "2026-01-28", query.Get("to"))
	assert.Equal(t, "1d", query.Get("interval"))

	require.Len(t, resp.Data, 1)
	assert.Equal(t, 27.5, resp.Data[0].Close)
}

func TestHistoricalDefaultWindow(t *testing.T) {
	rt := &mockRoundTripper{
		Response: jsonResponse(200, `{"symbol": "2222", "interval": "1d", "count": 0, "data": []}`),
	}
	client := newTestClient(rt)

	_, err := client.Historical(context.Background(), "2222", HistoricalRequest{})
	require.NoError(t, err)

	// Unset fields are omitted so the provider applies its defaults.
	assert.Empty(t, rt.LastRequest.URL.RawQuery)
}

func TestMarketSummary(t *testing.T) {
	rt := &mockRoundTripper{
		Response: jsonResponse(200, `{
			"index_value": 12345.67,
			"index_change": -45.2,
			"index_change_pct": -0.36,
			"volume": 250000000,
			"market_mood": "bearish"
		}`),
	}
	client := newTestClient(rt)

	summary, err := client.MarketSummary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/market/summary/", rt.LastRequest.URL.Path)
	assert.Equal(t, 12345.67, summary.IndexValue)
	assert.Equal(t, "bearish", summary.MarketMood)
}

func TestMarketRankings(t *testing.T) {
	tests := []struct {
		name string
		call func(*Client) error
		path string
	}{
		{
			name: "gainers",
			call: func(c *Client) error {
				_, err := c.Gainers(context.Background(), 5)
				return err
			},
			path: "/api/v1/market/gainers/",
		},
		{
			name: "losers",
			call: func(c *Client) error {
				_, err := c.Losers(context.Background(), 5)
				return err
			},
			path: "/api/v1/market/losers/",
		},
		{
			name: "volume leaders",
			call: func(c *Client) error {
				_, err := c.VolumeLeaders(context.Background(), 5)
				return err
			},
			path: "/api/v1/market/volume/",
		},
		{
			name: "value leaders",
			call: func(c *Client) error {
				_, err := c.ValueLeaders(context.Background(), 5)
				return err
			},
			path: "/api/v1/market/value/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := &mockRoundTripper{
				Response: jsonResponse(200, `{"gainers": [], "losers": [], "stocks": [], "count": 0}`),
			}
			client := newTestClient(rt)

			require.NoError(t, tt.call(client))
			assert.Equal(t, tt.path, rt.LastRequest.URL.Path)
			assert.Equal(t, "5", rt.LastRequest.URL.Query().Get("limit"))
		})
	}
}

func TestGainersDefaultLimit(t *testing.T) {
	rt := &mockRoundTripper{
		Response: jsonResponse(200, `{"gainers": [{"symbol": "4191", "change_pct": 9.9}], "count": 1}`),
	}
	client := newTestClient(rt)

	resp, err := client.Gainers(context.Background(), 0)
	require.NoError(t, err)

	assert.Empty(t, rt.LastRequest.URL.RawQuery, "limit should be omitted when unset")
	require.Len(t, resp.Gainers, 1)
	assert.Equal(t, 9.9, resp.Gainers[0].ChangePct)
}

func TestSectors(t *testing.T) {
	rt := &mockRoundTripper{
		Response: jsonResponse(200, `{
			"sectors": [{"name": "البنوك", "name_en": "Banks", "change_pct": 0.8}],
			"count": 1
		}`),
	}
	client := newTestClient(rt)

	resp, err := client.Sectors(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/market/sectors/", rt.LastRequest.URL.Path)
	require.Len(t, resp.Sectors, 1)
	assert.Equal(t, "Banks", resp.Sectors[0].NameEN)
}

func TestCompany(t *testing.T) {
	rt := &mockRoundTripper{
		Response: jsonResponse(200, `{
			"symbol": "1120",
			"name_en": "Al Rajhi Bank",
			"sector": "Banks",
			"fundamentals": {"market_cap": 350000000000, "pe_ratio": 18.2, "eps": 4.85}
		}`),
	}
	client := newTestClient(rt)

	company, err := client.Company(context.Background(), "1120")
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/company/1120/", rt.LastRequest.URL.Path)
	assert.Equal(t, "Al Rajhi Bank", company.NameEN)
	require.NotNil(t, company.Fundamentals)
	assert.Equal(t, 18.2, company.Fundamentals.PERatio)
	assert.Nil(t, company.Technicals, "technicals absent on lower plans")
}

func TestFinancials(t *testing.T) {
	rt := &mockRoundTripper{
		Response: jsonResponse(200, `{
			"symbol": "2222",
			"income": [{"period": "Q4", "year": 2025, "values": {"revenue": 400000000000}}],
			"balance_sheet": [],
			"cash_flow": []
		}`),
	}
	client := newTestClient(rt)

	financials, err := client.Financials(context.Background(), "2222")
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/financials/2222/", rt.LastRequest.URL.Path)
	require.Len(t, financials.Income, 1)
	assert.Equal(t, 2025, financials.Income[0].Year)
	assert.Equal(t, 400000000000.0, financials.Income[0].Values["revenue"])
}

func TestDividends(t *testing.T) {
	rt := &mockRoundTripper{
		Response: jsonResponse(200, `{
			"symbol": "2222",
			"yield": 4.1,
			"history": [{"ex_date": "2025-11-10", "pay_date": "2025-11-25", "amount": 0.35, "type": "cash"}]
		}`),
	}
	client := newTestClient(rt)

	dividends, err := client.Dividends(context.Background(), "2222")
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/dividends/2222/", rt.LastRequest.URL.Path)
	assert.Equal(t, 4.1, dividends.Yield)
	require.Len(t, dividends.History, 1)
	assert.Equal(t, 0.35, dividends.History[0].Amount)
}

func TestEvents(t *testing.T) {
	rt := &mockRoundTripper{
		Response: jsonResponse(200, `{
			"events": [{"symbol": "2222", "type": "earnings", "title": "Q4 results"}],
			"count": 1,
			"available_types": ["earnings", "dividends"]
		}`),
	}
	client := newTestClient(rt)

	resp, err := client.Events(context.Background(), EventsRequest{Symbol: "2222", Limit: 10})
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/events/", rt.LastRequest.URL.Path)
	query := rt.LastRequest.URL.Query()
	assert.Equal(t, "2222", query.Get("symbol"))
	assert.Equal(t, "10", query.Get("limit"))
	assert.Equal(t, []string{"earnings", "dividends"}, resp.AvailableTypes)
}

func TestEventsNoFilters(t *testing.T) {
	rt := &mockRoundTripper{
		Response: jsonResponse(200, `{"events": [], "count": 0, "available_types": []}`),
	}
	client := newTestClient(rt)

	_, err := client.Events(context.Background(), EventsRequest{})
	require.NoError(t, err)
	assert.Empty(t, rt.LastRequest.URL.RawQuery)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		sentinel   error
		wantCode   string
		wantInBody string
	}{
		{
			name:     "rate limited",
			status:   429,
			body:     `{"error": {"code": "RATE_LIMIT", "message": "slow down"}}`,
			sentinel: ErrRateLimited,
			wantCode: "RATE_LIMIT",
		},
		{
			name:     "invalid api key",
			status:   401,
			body:     `{"error": {"code": "INVALID_API_KEY", "message": "unknown key"}}`,
			sentinel: ErrInvalidAPIKey,
			wantCode: "INVALID_API_KEY",
		},
		{
			name:     "not found",
			status:   404,
			body:     `{"error": {"code": "SYMBOL_NOT_FOUND", "message": "no such symbol"}}`,
			sentinel: ErrNotFound,
			wantCode: "SYMBOL_NOT_FOUND",
		},
		{
			name:     "plan required",
			status:   403,
			body:     `{"error": {"code": "PLAN_REQUIRED", "message": "upgrade to Starter"}}`,
			sentinel: ErrPlanRequired,
			wantCode: "PLAN_REQUIRED",
		},
		{
			name:     "forbidden without plan code",
			status:   403,
			body:     `{"error": {"code": "KEY_REVOKED", "message": "key revoked"}}`,
			sentinel: ErrInvalidAPIKey,
			wantCode: "KEY_REVOKED",
		},
		{
			name:       "non-json body",
			status:     502,
			body:       "Bad Gateway",
			wantCode:   "UNKNOWN",
			wantInBody: "Bad Gateway",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := &mockRoundTripper{Response: jsonResponse(tt.status, tt.body)}
			client := newTestClient(rt)

			_, err := client.Quote(context.Background(), "2222")
			require.Error(t, err)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantCode, apiErr.Code)
			if tt.sentinel != nil {
				assert.ErrorIs(t, err, tt.sentinel)
			}
			if tt.wantInBody != "" {
				assert.Contains(t, apiErr.Message, tt.wantInBody)
			}
		})
	}
}

func TestRateLimitedOverridesBody(t *testing.T) {
	// 429 is special-cased before the body is parsed.
	rt := &mockRoundTripper{Response: jsonResponse(429, "not json at all")}
	client := newTestClient(rt)

	_, err := client.Quote(context.Background(), "2222")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRateLimited)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "RATE_LIMIT", apiErr.Code)
}

func TestNetworkError(t *testing.T) {
	rt := &mockRoundTripper{Err: errors.New("connection refused")}
	client := newTestClient(rt)

	_, err := client.Quote(context.Background(), "2222")
	require.Error(t, err)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr), "network failures are not API errors")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestWithBaseURL(t *testing.T) {
	rt := &mockRoundTripper{Response: jsonResponse(200, `{"symbol": "2222"}`)}
	client := New("shmk_test_abc123",
		WithTransport(rt),
		WithBaseURL("https://sandbox.example.com/api/v1/"),
	)

	_, err := client.Quote(context.Background(), "2222")
	require.NoError(t, err)
	assert.Equal(t, "https://sandbox.example.com/api/v1/quote/2222/", rt.LastRequest.URL.String())
}
