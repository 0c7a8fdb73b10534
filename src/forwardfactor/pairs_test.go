package forwardfactor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiaming2012/forward-factor/src/eventmodels"
)

func point(exp time.Time, dte int, iv float64) eventmodels.TermPoint {
	return eventmodels.TermPoint{Expiration: exp, DTE: dte, IV: iv, Count: 3}
}

func TestSelectPairs(t *testing.T) {
	base := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	d := func(days int) time.Time { return base.AddDate(0, 0, days) }

	t.Run("adjacent pairs only", func(t *testing.T) {
		ts := eventmodels.TermStructure{}
		for _, p := range []eventmodels.TermPoint{point(d(63), 63, 28.4), point(d(28), 28, 35.2), point(d(91), 91, 27)} {
			ts[eventmodels.NewExpirationDate(p.Expiration)] = p
		}

		opps := SelectPairs("AAPL", ts)
		require.Len(t, opps, 2)

		assert.Equal(t, 28, opps[0].FrontDTE)
		assert.Equal(t, 63, opps[0].BackDTE)
		assert.Equal(t, 63, opps[1].FrontDTE)
		assert.Equal(t, 91, opps[1].BackDTE)
		assert.InDelta(t, 64.018, opps[0].ForwardFactor, 1e-3)
		assert.Equal(t, eventmodels.SignalSell, opps[0].Signal())
	})

	t.Run("undefined pair is skipped", func(t *testing.T) {
		ts := eventmodels.TermStructure{
			eventmodels.NewExpirationDate(d(30)): point(d(30), 30, 80),
			eventmodels.NewExpirationDate(d(60)): point(d(60), 60, 20),
		}

		assert.Empty(t, SelectPairs("TSLA", ts))
	})

	t.Run("zero variance pair is skipped", func(t *testing.T) {
		ts := eventmodels.TermStructure{
			eventmodels.NewExpirationDate(d(25)):  point(d(25), 25, 40),
			eventmodels.NewExpirationDate(d(100)): point(d(100), 100, 20),
			eventmodels.NewExpirationDate(d(130)): point(d(130), 130, 20),
		}

		opps := SelectPairs("NVDA", ts)
		require.Len(t, opps, 1)
		assert.Equal(t, 100, opps[0].FrontDTE)
		assert.Equal(t, 130, opps[0].BackDTE)
	})

	t.Run("single point yields nothing", func(t *testing.T) {
		ts := eventmodels.TermStructure{eventmodels.NewExpirationDate(d(30)): point(d(30), 30, 30)}
		assert.Empty(t, SelectPairs("TSLA", ts))
	})
}

func TestFilterForwardFactorWindow(t *testing.T) {
	opps := []*eventmodels.Opportunity{
		{Ticker: "A", ForwardFactor: -150},
		{Ticker: "B", ForwardFactor: -100},
		{Ticker: "C", ForwardFactor: 40},
		{Ticker: "D", ForwardFactor: 100.5},
	}

	out := FilterForwardFactorWindow(opps, -100, 100)
	require.Len(t, out, 2)
	assert.Equal(t, eventmodels.StockSymbol("B"), out[0].Ticker)
	assert.Equal(t, eventmodels.StockSymbol("C"), out[1].Ticker)
}

func TestSortByAbsForwardFactor(t *testing.T) {
	opps := []*eventmodels.Opportunity{
		{Ticker: "A", ForwardFactor: 35},
		{Ticker: "B", ForwardFactor: -60},
		{Ticker: "C", ForwardFactor: 35},
		{Ticker: "D", ForwardFactor: 10},
	}

	sorted := SortByAbsForwardFactor(opps)

	var tickers []eventmodels.StockSymbol
	for _, o := range sorted {
		tickers = append(tickers, o.Ticker)
	}

	assert.Equal(t, []eventmodels.StockSymbol{"B", "A", "C", "D"}, tickers)
	assert.Equal(t, eventmodels.StockSymbol("A"), opps[0].Ticker)
}
