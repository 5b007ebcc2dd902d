package sahmk

import (
	"context"
	"fmt"
	"net/url"
)

// Historical fetches an OHLCV series for a symbol. Unset request fields are
// omitted so the provider applies its defaults: the last 30 days at a daily
// interval.
func (c *Client) Historical(ctx context.Context, symbol string, req HistoricalRequest) (*HistoricalResponse, error) {
	query := url.Values{}
	if req.From != "" {
		query.Set("from", req.From)
	}
	if req.To != "" {
		query.Set("to", req.To)
	}
	if req.Interval != "" {
		query.Set("interval", req.Interval)
	}

	var resp HistoricalResponse
	if err := c.get(ctx, fmt.Sprintf("/historical/%s/", symbol), query, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
