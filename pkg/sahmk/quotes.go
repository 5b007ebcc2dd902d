package sahmk

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Quote fetches the current quote for a symbol, e.g. "2222" for Aramco.
func (c *Client) Quote(ctx context.Context, symbol string) (*Quote, error) {
	var quote Quote
	if err := c.get(ctx, fmt.Sprintf("/quote/%s/", symbol), nil, &quote); err != nil {
		return nil, err
	}
	return &quote, nil
}

// Quotes fetches quotes for up to MaxBatchSymbols symbols in one request.
func (c *Client) Quotes(ctx context.Context, symbols []string) (*QuotesResponse, error) {
	if len(symbols) > MaxBatchSymbols {
		return nil, fmt.Errorf("%d symbols requested, maximum is %d: %w",
			len(symbols), MaxBatchSymbols, ErrTooManySymbols)
	}

	query := url.Values{}
	query.Set("symbols", strings.Join(symbols, ","))

	var resp QuotesResponse
	if err := c.get(ctx, "/quotes/", query, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
