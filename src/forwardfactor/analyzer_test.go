package forwardfactor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiaming2012/forward-factor/src/eventmodels"
)

func TestRankByRating(t *testing.T) {
	analyses := []*eventmodels.Analysis{
		{Opportunity: &eventmodels.Opportunity{Ticker: "A"}, Rating: 6},
		{Opportunity: &eventmodels.Opportunity{Ticker: "B"}, Rating: 8},
		{Opportunity: &eventmodels.Opportunity{Ticker: "C"}, Rating: 6},
		{Opportunity: &eventmodels.Opportunity{Ticker: "D"}, Rating: 8},
	}

	ranked := RankByRating(analyses)

	var tickers []eventmodels.StockSymbol
	for _, a := range ranked {
		tickers = append(tickers, a.Opportunity.Ticker)
	}

	assert.Equal(t, []eventmodels.StockSymbol{"B", "D", "A", "C"}, tickers)
	assert.Equal(t, eventmodels.StockSymbol("A"), analyses[0].Opportunity.Ticker)

	assert.Len(t, TopN(ranked, 2), 2)
	assert.Len(t, TopN(ranked, 10), 4)
	assert.Len(t, TopN(ranked, -1), 4)
}

func TestAnalyzer(t *testing.T) {
	analyzer := NewAnalyzer(DefaultFilterConfig())

	good := newConsistentOpportunity(t, 35.2, 28, 28.4, 63)
	weak := newConsistentOpportunity(t, 30, 28, 29, 63)

	t.Run("analyze quality setup", func(t *testing.T) {
		analysis := analyzer.Analyze(good, nil)

		require.NotNil(t, analysis.Earnings)
		assert.True(t, analysis.IsQuality)
		assert.Empty(t, analysis.RejectionReasons)
		assert.Same(t, good, analysis.Opportunity)
		assert.Equal(t, 80.0, analysis.Probability)
		assert.Equal(t, 4.0, analysis.RiskReward)
		assert.Equal(t, 9, analysis.Rating)
		assert.NotEmpty(t, analysis.Thesis)
		assert.NotEmpty(t, analysis.TradeStructure)
	})

	t.Run("analyze all partitions", func(t *testing.T) {
		accepted, rejected := analyzer.AnalyzeAll([]*eventmodels.Opportunity{weak, good}, nil)

		require.Len(t, accepted, 1)
		require.Len(t, rejected, 1)
		assert.Same(t, good, accepted[0].Opportunity)
		assert.False(t, rejected[0].IsQuality)
		assert.Contains(t, rejected[0].FirstRejectionReason(), "Forward Factor too low")
	})

	t.Run("lookup feeds earnings info", func(t *testing.T) {
		var seen []eventmodels.StockSymbol
		lookup := func(o *eventmodels.Opportunity) *eventmodels.EarningsInfo {
			seen = append(seen, o.Ticker)
			return &eventmodels.EarningsInfo{Ticker: o.Ticker, HasEarningsSoon: true}
		}

		accepted, _ := analyzer.AnalyzeAll([]*eventmodels.Opportunity{good}, lookup)

		require.Len(t, accepted, 1)
		assert.Equal(t, []eventmodels.StockSymbol{"AAPL"}, seen)
		assert.InDelta(t, 80*0.85, accepted[0].Probability, 1e-9)
	})
}
