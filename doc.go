// Package sahmk-go is a Go client for the SAHMK developer API, the hosted
// market-data service for the Saudi exchange.
//
// The library has two surfaces: a REST façade for quotes, historical series,
// market rankings and company data, and a streaming session that pushes
// real-time quote updates over a WebSocket connection.
//
// Core features:
//
//   - Typed methods over every REST endpoint, authenticated with the
//     X-API-Key header
//   - Real-time quote streaming with batch subscription, keep-alive pings
//     and automatic reconnection
//   - Typed errors carrying the HTTP status and the provider's error code
//     and message
//   - Optional client-side request pacing
//
// # Errors
//
// Non-200 responses surface as *sahmk.APIError. Failure classes unwrap to
// sentinels so callers can match with errors.Is:
//
//   - ErrRateLimited: HTTP 429, the rate-limit signal
//   - ErrInvalidAPIKey: the API rejected the key
//   - ErrNotFound: unknown symbol or resource
//   - ErrPlanRequired: the endpoint needs a higher subscription plan
//   - ErrTooManySymbols: a batch call exceeded the per-request symbol limit
//
// The library never retries, caches or reinterprets provider responses.
//
// # Examples
//
// Fetching a quote:
//
//	client := sahmk.New(os.Getenv("SAHMK_API_KEY"))
//
//	quote, err := client.Quote(ctx, "2222")
//	if err != nil {
//	    if errors.Is(err, sahmk.ErrRateLimited) {
//	        log.Fatal("rate limited, slow down")
//	    }
//	    log.Fatalf("quote failed: %v", err)
//	}
//	fmt.Printf("%s: %.2f SAR (%.2f%%)\n", quote.Symbol, quote.Price, quote.ChangePercent)
//
// Batch quotes and historical data:
//
//	batch, err := client.Quotes(ctx, []string{"2222", "1120", "4191"})
//
//	series, err := client.Historical(ctx, "2222", sahmk.HistoricalRequest{
//	    From:     "2026-01-01",
//	    To:       "2026-01-31",
//	    Interval: "1d",
//	})
//
// Streaming real-time quotes:
//
//	session, err := client.Stream(ctx, []string{"2222", "1120"}, sahmk.StreamHandlers{
//	    OnQuote: func(update sahmk.QuoteUpdate) {
//	        fmt.Printf("[LIVE] %s: %.2f\n", update.Symbol, update.Data.Price)
//	    },
//	    OnError: func(streamErr sahmk.StreamError) {
//	        log.Printf("stream error: %s", streamErr.Message)
//	    },
//	})
//	if err != nil {
//	    log.Fatalf("stream failed: %v", err)
//	}
//	defer session.Close()
//
// The session keeps itself alive with periodic pings and resubscribes its
// symbols after reconnecting. Cancelling the context passed to Stream ends
// the session and all of its background activity.
package sahmkgo
