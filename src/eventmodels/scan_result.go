package eventmodels

import (
	"time"

	"github.com/google/uuid"
)

type SkippedTicker struct {
	Ticker StockSymbol
	Reason error
}

type ScanResult struct {
	ID            uuid.UUID
	StartedAt     time.Time
	CompletedAt   time.Time
	Tickers       []StockSymbol
	Opportunities []*Opportunity
	Accepted      []*Analysis
	Rejected      []*Analysis
	Skipped       []SkippedTicker
}

func NewScanResult(startedAt time.Time, tickers []StockSymbol) *ScanResult {
	return &ScanResult{
		ID:        uuid.New(),
		StartedAt: startedAt,
		Tickers:   tickers,
	}
}

func (r *ScanResult) TotalAnalyzed() int {
	return len(r.Accepted) + len(r.Rejected)
}
