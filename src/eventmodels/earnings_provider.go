package eventmodels

import "context"

// EarningsProvider returns the next earnings date of a ticker as YYYY-MM-DD.
// found is false when the provider has no date for the ticker.
type EarningsProvider interface {
	FetchNextEarningsDate(ctx context.Context, symbol StockSymbol) (date string, found bool, err error)
}
