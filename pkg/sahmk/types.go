package sahmk

// Quote is a stock quote. Fields beyond the core price data are populated
// when the provider includes them, which varies by plan.
type Quote struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	NameEN        string  `json:"name_en"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	Open          float64 `json:"open"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	PreviousClose float64 `json:"previous_close"`
	Volume        int64   `json:"volume"`
	Value         float64 `json:"value"`
	Bid           float64 `json:"bid"`
	Ask           float64 `json:"ask"`

	Liquidity *Liquidity `json:"liquidity,omitempty"`

	Timestamp string `json:"timestamp,omitempty"`
}

// Liquidity is the money-flow breakdown attached to quotes on higher plans.
type Liquidity struct {
	Inflow   float64 `json:"inflow"`
	Outflow  float64 `json:"outflow"`
	NetValue float64 `json:"net_value"`
}

// QuotesResponse is the batch quote envelope.
type QuotesResponse struct {
	Quotes []Quote `json:"quotes"`
	Count  int     `json:"count"`
}

// HistoricalRequest narrows a historical data query. Zero values are omitted
// and the provider applies its defaults (last 30 days, daily interval).
type HistoricalRequest struct {
	// From and To are dates in YYYY-MM-DD form.
	From string
	To   string

	// Interval is "1d", "1w" or "1m".
	Interval string
}

// Bar is one OHLCV record of a historical series.
type Bar struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// HistoricalResponse is a historical price series with its effective window.
type HistoricalResponse struct {
	Symbol   string `json:"symbol"`
	Interval string `json:"interval"`
	From     string `json:"from"`
	To       string `json:"to"`
	Count    int    `json:"count"`
	Data     []Bar  `json:"data"`
}

// MarketSummary is the market-wide overview built around the TASI index.
type MarketSummary struct {
	IndexValue     float64 `json:"index_value"`
	IndexChange    float64 `json:"index_change"`
	IndexChangePct float64 `json:"index_change_pct"`
	Volume         int64   `json:"volume"`
	Value          float64 `json:"value"`
	MarketMood     string  `json:"market_mood"`
	UpdatedAt      string  `json:"updated_at,omitempty"`
}

// Mover is one entry of a market ranking (gainers, losers, leaders).
type Mover struct {
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name"`
	NameEN    string  `json:"name_en"`
	Price     float64 `json:"price"`
	Change    float64 `json:"change"`
	ChangePct float64 `json:"change_pct"`
	Volume    int64   `json:"volume"`
	Value     float64 `json:"value"`
}

// GainersResponse lists the top gaining stocks.
type GainersResponse struct {
	Gainers []Mover `json:"gainers"`
	Count   int     `json:"count"`
}

// LosersResponse lists the top losing stocks.
type LosersResponse struct {
	Losers []Mover `json:"losers"`
	Count  int     `json:"count"`
}

// LeadersResponse lists stocks ranked by traded volume or value.
type LeadersResponse struct {
	Stocks []Mover `json:"stocks"`
	Count  int     `json:"count"`
}

// Sector is one sector's aggregate performance.
type Sector struct {
	Name      string  `json:"name"`
	NameEN    string  `json:"name_en"`
	ChangePct float64 `json:"change_pct"`
	Volume    int64   `json:"volume"`
	Value     float64 `json:"value"`
}

// SectorsResponse lists sector performance.
type SectorsResponse struct {
	Sectors []Sector `json:"sectors"`
	Count   int      `json:"count"`
}

// Company is a company profile. Fundamentals, technicals, valuation and
// analyst data are present only on plans that include them.
type Company struct {
	Symbol      string `json:"symbol"`
	Name        string `json:"name"`
	NameEN      string `json:"name_en"`
	Sector      string `json:"sector"`
	Description string `json:"description,omitempty"`
	Website     string `json:"website,omitempty"`
	ListedSince string `json:"listed_since,omitempty"`

	Fundamentals *Fundamentals `json:"fundamentals,omitempty"`
	Technicals   *Technicals   `json:"technicals,omitempty"`
	Valuation    *Valuation    `json:"valuation,omitempty"`
	Analysts     *Analysts     `json:"analysts,omitempty"`
}

// Fundamentals are the company's core financial ratios.
type Fundamentals struct {
	MarketCap     float64 `json:"market_cap"`
	PERatio       float64 `json:"pe_ratio"`
	EPS           float64 `json:"eps"`
	BookValue     float64 `json:"book_value"`
	DividendYield float64 `json:"dividend_yield"`
	SharesIssued  int64   `json:"shares_issued"`
}

// Technicals are the derived technical indicators.
type Technicals struct {
	RSI        float64 `json:"rsi"`
	MA50       float64 `json:"ma50"`
	MA200      float64 `json:"ma200"`
	High52Week float64 `json:"high_52w"`
	Low52Week  float64 `json:"low_52w"`
}

// Valuation is the provider's valuation snapshot.
type Valuation struct {
	FairValue float64 `json:"fair_value"`
	Rating    string  `json:"rating"`
}

// Analysts summarizes analyst coverage.
type Analysts struct {
	Coverage    int     `json:"coverage"`
	TargetPrice float64 `json:"target_price"`
	Consensus   string  `json:"consensus"`
}

// FinancialPeriod is one reporting period of a financial statement. The
// statement line items come through as-is under Values.
type FinancialPeriod struct {
	Period string             `json:"period"`
	Year   int                `json:"year"`
	Values map[string]float64 `json:"values"`
}

// Financials bundles the three financial statements.
type Financials struct {
	Symbol       string            `json:"symbol"`
	Income       []FinancialPeriod `json:"income"`
	BalanceSheet []FinancialPeriod `json:"balance_sheet"`
	CashFlow     []FinancialPeriod `json:"cash_flow"`
}

// DividendPayment is one historical dividend distribution.
type DividendPayment struct {
	ExDate  string  `json:"ex_date"`
	PayDate string  `json:"pay_date"`
	Amount  float64 `json:"amount"`
	Type    string  `json:"type"`
}

// Dividends is the dividend history and current yield for a stock.
type Dividends struct {
	Symbol  string            `json:"symbol"`
	Yield   float64           `json:"yield"`
	History []DividendPayment `json:"history"`
}

// EventsRequest narrows an events query. Zero values are omitted.
type EventsRequest struct {
	// Symbol filters events to a single stock.
	Symbol string

	// Limit caps the number of results. The provider defaults to 20.
	Limit int
}

// Event is one generated stock event summary.
type Event struct {
	ID          string `json:"id"`
	Symbol      string `json:"symbol"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Summary     string `json:"summary"`
	PublishedAt string `json:"published_at"`
}

// EventsResponse is the events list envelope.
type EventsResponse struct {
	Events         []Event  `json:"events"`
	Count          int      `json:"count"`
	AvailableTypes []string `json:"available_types"`
}

// QuoteUpdate is a real-time quote frame from the streaming channel.
type QuoteUpdate struct {
	Type      string `json:"type"`
	Symbol    string `json:"symbol"`
	Timestamp string `json:"timestamp"`
	Data      Quote  `json:"data"`
}

// StreamError is an error frame from the streaming channel.
type StreamError struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
