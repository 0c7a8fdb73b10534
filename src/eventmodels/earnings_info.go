package eventmodels

import "time"

// EarningsInfo places a front/back expiration pair relative to the next known
// earnings announcement. A nil EarningsDate means no known catalyst.
type EarningsInfo struct {
	Ticker             StockSymbol
	EarningsDate       *time.Time
	FrontIsPreEarnings bool
	BackIsPostEarnings bool
	BothPostEarnings   bool
	HasEarningsSoon    bool
}

func (e *EarningsInfo) HasDate() bool {
	return e != nil && e.EarningsDate != nil
}

// IsCleanStraddle reports whether the event falls between the two expirations.
func (e *EarningsInfo) IsCleanStraddle() bool {
	return e != nil && e.FrontIsPreEarnings && e.BackIsPostEarnings
}
