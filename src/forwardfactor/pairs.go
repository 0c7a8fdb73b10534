package forwardfactor

import (
	"errors"
	"math"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/forward-factor/src/eventmodels"
)

func NewOpportunity(ticker eventmodels.StockSymbol, front, back eventmodels.TermPoint, result Result, hasEarningsSoon bool) *eventmodels.Opportunity {
	return &eventmodels.Opportunity{
		Ticker:          ticker,
		ForwardFactor:   result.ForwardFactor,
		FrontDate:       front.Expiration,
		BackDate:        back.Expiration,
		FrontDTE:        front.DTE,
		BackDTE:         back.DTE,
		FrontIV:         front.IV,
		BackIV:          back.IV,
		ForwardVol:      result.ForwardVol,
		HasEarningsSoon: hasEarningsSoon,
	}
}

// SelectPairs walks the ladder in DTE order and emits one Opportunity for every
// adjacent pair with a defined forward factor.
func SelectPairs(ticker eventmodels.StockSymbol, ts eventmodels.TermStructure) []*eventmodels.Opportunity {
	points := ts.Sorted()

	var opportunities []*eventmodels.Opportunity
	for i := 0; i+1 < len(points); i++ {
		front, back := points[i], points[i+1]

		result, err := Calculate(front.IV, front.DTE, back.IV, back.DTE)
		if err != nil {
			if errors.Is(err, eventmodels.ErrMathUndefined) {
				log.WithField("ticker", ticker).Debugf("SelectPairs: skipping %s/%s: %v", eventmodels.NewExpirationDate(front.Expiration), eventmodels.NewExpirationDate(back.Expiration), err)
			}
			continue
		}

		opportunities = append(opportunities, NewOpportunity(ticker, front, back, result, false))
	}

	return opportunities
}

// FilterForwardFactorWindow keeps opportunities with lo <= FF <= hi.
func FilterForwardFactorWindow(opportunities []*eventmodels.Opportunity, lo, hi float64) []*eventmodels.Opportunity {
	var out []*eventmodels.Opportunity
	for _, o := range opportunities {
		if o.ForwardFactor >= lo && o.ForwardFactor <= hi {
			out = append(out, o)
		}
	}

	return out
}

// SortByAbsForwardFactor orders opportunities by |FF|, largest mispricing first.
func SortByAbsForwardFactor(opportunities []*eventmodels.Opportunity) []*eventmodels.Opportunity {
	out := make([]*eventmodels.Opportunity, len(opportunities))
	copy(out, opportunities)

	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].ForwardFactor) > math.Abs(out[j].ForwardFactor)
	})

	return out
}
