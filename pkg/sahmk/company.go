package sahmk

import (
	"context"
	"fmt"
)

// Company fetches the company profile for a symbol. The response grows with
// the key's plan: the basic profile is always present, fundamentals arrive
// on Starter and technicals, valuation and analyst data on Pro.
func (c *Client) Company(ctx context.Context, symbol string) (*Company, error) {
	var company Company
	if err := c.get(ctx, fmt.Sprintf("/company/%s/", symbol), nil, &company); err != nil {
		return nil, err
	}
	return &company, nil
}

// Financials fetches the income statement, balance sheet and cash flow
// statement for a symbol.
func (c *Client) Financials(ctx context.Context, symbol string) (*Financials, error) {
	var financials Financials
	if err := c.get(ctx, fmt.Sprintf("/financials/%s/", symbol), nil, &financials); err != nil {
		return nil, err
	}
	return &financials, nil
}

// Dividends fetches the dividend history and current yield for a symbol.
func (c *Client) Dividends(ctx context.Context, symbol string) (*Dividends, error) {
	var dividends Dividends
	if err := c.get(ctx, fmt.Sprintf("/dividends/%s/", symbol), nil, &dividends); err != nil {
		return nil, err
	}
	return &dividends, nil
}
