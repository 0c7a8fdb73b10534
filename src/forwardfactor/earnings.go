package forwardfactor

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/forward-factor/src/eventmodels"
	"github.com/jiaming2012/forward-factor/src/utils"
)

// EarningsSoonWindowDays is symmetric so recent announcements also count.
const EarningsSoonWindowDays = 60

// ResolveEarningsPosition classifies front and back expirations against the
// next earnings date. An empty or malformed date resolves to no known catalyst.
func ResolveEarningsPosition(ticker eventmodels.StockSymbol, front, back time.Time, earningsDate string, today time.Time) *eventmodels.EarningsInfo {
	info := &eventmodels.EarningsInfo{Ticker: ticker}

	if earningsDate == "" {
		return info
	}

	earnings, err := utils.ParseDate(earningsDate)
	if err != nil {
		log.WithField("ticker", ticker).Debugf("ResolveEarningsPosition: ignoring earnings date: %v", err)
		return info
	}

	front = utils.DateOf(front)
	back = utils.DateOf(back)

	days := utils.DaysBetween(today, earnings)
	if days < 0 {
		days = -days
	}

	info.EarningsDate = &earnings
	info.FrontIsPreEarnings = front.Before(earnings)
	info.BackIsPostEarnings = back.After(earnings)
	info.BothPostEarnings = front.After(earnings) && back.After(earnings)
	info.HasEarningsSoon = days < EarningsSoonWindowDays

	return info
}
