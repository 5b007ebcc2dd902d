package sahmk

import (
	"context"
	"net/url"
	"strconv"
)

// MarketSummary fetches the market overview: TASI index value, change,
// traded volume and the provider's market mood.
func (c *Client) MarketSummary(ctx context.Context) (*MarketSummary, error) {
	var summary MarketSummary
	if err := c.get(ctx, "/market/summary/", nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// Gainers fetches the top gaining stocks. limit 0 uses the provider default
// of 10; the maximum is 50.
func (c *Client) Gainers(ctx context.Context, limit int) (*GainersResponse, error) {
	var resp GainersResponse
	if err := c.get(ctx, "/market/gainers/", limitQuery(limit), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Losers fetches the top losing stocks. limit 0 uses the provider default
// of 10; the maximum is 50.
func (c *Client) Losers(ctx context.Context, limit int) (*LosersResponse, error) {
	var resp LosersResponse
	if err := c.get(ctx, "/market/losers/", limitQuery(limit), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// VolumeLeaders fetches the stocks with the highest traded volume.
func (c *Client) VolumeLeaders(ctx context.Context, limit int) (*LeadersResponse, error) {
	var resp LeadersResponse
	if err := c.get(ctx, "/market/volume/", limitQuery(limit), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ValueLeaders fetches the stocks with the highest traded value in SAR.
func (c *Client) ValueLeaders(ctx context.Context, limit int) (*LeadersResponse, error) {
	var resp LeadersResponse
	if err := c.get(ctx, "/market/value/", limitQuery(limit), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Sectors fetches sector performance.
func (c *Client) Sectors(ctx context.Context) (*SectorsResponse, error) {
	var resp SectorsResponse
	if err := c.get(ctx, "/market/sectors/", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// limitQuery builds a query carrying limit only when the caller set one.
func limitQuery(limit int) url.Values {
	if limit <= 0 {
		return nil
	}
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	return query
}
