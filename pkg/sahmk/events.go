package sahmk

import (
	"context"
	"net/url"
	"strconv"
)

// Events fetches generated stock event summaries, optionally filtered to a
// single symbol. limit 0 uses the provider default of 20.
func (c *Client) Events(ctx context.Context, req EventsRequest) (*EventsResponse, error) {
	query := url.Values{}
	if req.Symbol != "" {
		query.Set("symbol", req.Symbol)
	}
	if req.Limit > 0 {
		query.Set("limit", strconv.Itoa(req.Limit))
	}

	var resp EventsResponse
	if err := c.get(ctx, "/events/", query, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
