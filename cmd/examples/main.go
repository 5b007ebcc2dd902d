package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/veiloq/sahmk-go/pkg/logging"
	"github.com/veiloq/sahmk-go/pkg/sahmk"
)

func main() {
	logger := logging.NewLogger(logging.WithLevel(logging.DEBUG))

	apiKey := os.Getenv("SAHMK_API_KEY")
	if apiKey == "" {
		logger.Error("SAHMK_API_KEY not set")
		os.Exit(1)
	}

	client := sahmk.New(apiKey,
		sahmk.WithTimeout(15*time.Second),
		sahmk.WithLogger(logger),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Single quote
	quote, err := client.Quote(ctx, "2222")
	if err != nil {
		logger.Error("failed to get quote", logging.Error(err))
		os.Exit(1)
	}
	logger.Info("quote",
		logging.String("symbol", quote.Symbol),
		logging.String("name", quote.NameEN),
		logging.Float64("price", quote.Price),
		logging.Float64("change_percent", quote.ChangePercent),
	)

	// Market overview
	summary, err := client.MarketSummary(ctx)
	if err != nil {
		logger.Error("failed to get market summary", logging.Error(err))
		os.Exit(1)
	}
	logger.Info("market summary",
		logging.Float64("index", summary.IndexValue),
		logging.Float64("change_pct", summary.IndexChangePct),
		logging.String("mood", summary.MarketMood),
	)

	gainers, err := client.Gainers(ctx, 5)
	if err != nil {
		logger.Error("failed to get gainers", logging.Error(err))
		os.Exit(1)
	}
	for _, stock := range gainers.Gainers {
		logger.Info("gainer",
			logging.String("symbol", stock.Symbol),
			logging.Float64("change_pct", stock.ChangePct),
		)
	}

	// Real-time stream until interrupted
	logger.Info("opening quote stream")
	session, err := client.Stream(ctx, []string{"2222", "1120", "4191"}, sahmk.StreamHandlers{
		OnQuote: func(update sahmk.QuoteUpdate) {
			logger.Info("live quote",
				logging.String("symbol", update.Symbol),
				logging.Float64("price", update.Data.Price),
				logging.Float64("change_percent", update.Data.ChangePercent),
			)
		},
		OnError: func(streamErr sahmk.StreamError) {
			logger.Warn("stream error",
				logging.String("code", streamErr.Code),
				logging.String("message", streamErr.Message),
			)
		},
	})
	if err != nil {
		logger.Error("failed to open stream", logging.Error(err))
		os.Exit(1)
	}
	defer session.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("shutting down")
}
